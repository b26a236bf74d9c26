package main

import (
	"log"
	"net/http"

	"linview/internal/api"
	"linview/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("linview api listening on %s pdf_dir=%q max_upload_mb=%d task_queue=%s", cfg.APIAddr, cfg.PDFDir, cfg.MaxUploadMB, cfg.TemporalTaskQueue)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
