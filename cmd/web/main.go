package main

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/storage"
)

const (
	defaultHost    = "0.0.0.0"
	defaultPort    = "8080"
	defaultDataDir = "soulstaff"
)

//go:embed index.html
var htmlPage string

var page = template.Must(template.New("index").Funcs(template.FuncMap{
	"clock": func(d time.Duration) string {
		return (d.Truncate(time.Second)).String()
	},
	"inc": func(i int) int { return i + 1 },
}).Parse(htmlPage))

type pageData struct {
	SSHHost string
	Ranking []storage.RunSummary
}

func main() {
	logger := config.NewLogger(os.Stderr, "web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")

	manager, err := storage.OpenManager(config.GetEnv("SOULSTAFF_DATA", defaultDataDir))
	if err != nil {
		logger.Fatal("failed to open save data", "err", err)
	}
	ranking := storage.OpenRanking(manager)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		top := loadRanking(ranking, logger)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, pageData{SSHHost: sshHost, Ranking: top}); err != nil {
			logger.Error("failed to render page", "err", err)
		}
	})
	mux.HandleFunc("GET /api/ranking", func(w http.ResponseWriter, r *http.Request) {
		top := loadRanking(ranking, logger)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(top); err != nil {
			logger.Error("failed to encode ranking", "err", err)
		}
	})

	addr := net.JoinHostPort(host, port)
	logger.Info("starting web server", "addr", "http://"+addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

// loadRanking returns the top runs, or an empty list when the store fails.
func loadRanking(ranking storage.RankingStore, logger *log.Logger) []storage.RunSummary {
	top, err := ranking.Top()
	if err != nil {
		logger.Error("failed to load ranking", "err", err)
	}
	if top == nil {
		top = []storage.RunSummary{}
	}
	return top
}
