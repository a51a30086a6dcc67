package handlers

import (
	"context"
	"time"

	"CryptoMarketBot/internal/notifications"
	"CryptoMarketBot/internal/repositories"
	"CryptoMarketBot/internal/services/reports"

	log "github.com/sirupsen/logrus"
)

// ReportHandler builds the per-symbol market reports on its interval
// and delivers them to the chat.
type ReportHandler struct {
	builder    *reports.Builder
	telegram   *notifications.TelegramClient
	symbolRepo *repositories.SymbolRepository
	interval   time.Duration
}

func NewReportHandler(builder *reports.Builder, telegram *notifications.TelegramClient,
	symbolRepo *repositories.SymbolRepository, interval time.Duration) *ReportHandler {
	return &ReportHandler{
		builder:    builder,
		telegram:   telegram,
		symbolRepo: symbolRepo,
		interval:   interval,
	}
}

func (h *ReportHandler) Start(ctx context.Context) error {
	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("Stopping reports...")
				return
			case <-ticker.C:
				h.run(ctx)
			}
		}
	}()

	return nil
}

func (h *ReportHandler) run(ctx context.Context) {
	symbols, err := h.symbolRepo.FindActive()
	if err != nil {
		log.Errorf("report handler: loading symbols failed: %v", err)
		return
	}

	var messages []string
	for _, sym := range symbols {
		if ctx.Err() != nil {
			return
		}
		report, err := h.builder.Build(ctx, sym)
		if err != nil {
			log.Errorf("report handler: building report failed for %s: %v", sym.SymbolName, err)
			continue
		}
		messages = append(messages, report.Format())
	}

	if h.telegram == nil || len(messages) == 0 {
		return
	}
	sent := h.telegram.SendBatch(ctx, messages)
	log.Infof("Reports delivered: %d/%d", sent, len(messages))
}
