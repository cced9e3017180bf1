package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rfmendes/contas/internal/account"
	accountStore "github.com/rfmendes/contas/internal/account/store"
	"github.com/rfmendes/contas/internal/auth"
	authStore "github.com/rfmendes/contas/internal/auth/store"
	"github.com/rfmendes/contas/internal/category"
	categoryStore "github.com/rfmendes/contas/internal/category/store"
	"github.com/rfmendes/contas/internal/config"
	"github.com/rfmendes/contas/internal/database"
	"github.com/rfmendes/contas/internal/export"
	contasHttp "github.com/rfmendes/contas/internal/http"
	accountHandler "github.com/rfmendes/contas/internal/http/account"
	authHandler "github.com/rfmendes/contas/internal/http/auth"
	categoryHandler "github.com/rfmendes/contas/internal/http/category"
	expenseHandler "github.com/rfmendes/contas/internal/http/expense"
	"github.com/rfmendes/contas/internal/ledger"
	ledgerStore "github.com/rfmendes/contas/internal/ledger/store"
	"github.com/rfmendes/contas/internal/mail"
	"github.com/rfmendes/contas/internal/receipt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	receipts, err := receipt.NewGCS(ctx, cfg.Receipts.Bucket, cfg.Receipts.CredentialsFile)
	if err != nil {
		slog.Error("failed to create receipt store", "error", err)
		os.Exit(1)
	}

	mailer, err := mail.NewSMTP(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		BaseURL:  cfg.App.BaseURL,
	})
	if err != nil {
		slog.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.AccessTTL, cfg.Auth.VerifyTTL)

	var (
		engine          = ledger.NewEngine(ledgerStore.New(db))
		ledgerService   = ledger.NewService(ledgerStore.New(db), engine, receipts)
		transferService = ledger.NewTransfers(engine)
		accountService  = account.NewService(accountStore.New(db))
		categoryService = category.NewService(categoryStore.New(db))
		authService     = auth.NewService(authStore.New(db), tokens, mailer, accountService, categoryService)
		exportService   = export.NewService(ledgerService)
	)

	var (
		authH     = authHandler.NewHandler(authService)
		accountH  = accountHandler.NewHandler(accountService, engine, transferService)
		categoryH = categoryHandler.NewHandler(categoryService)
		expenseH  = expenseHandler.NewHandler(ledgerService, exportService, cfg.Receipts.MaxUploadBytes)
	)

	router := contasHttp.New(tokens, authH, accountH, categoryH, expenseH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "addr", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
