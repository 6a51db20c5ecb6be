package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"

	"github.com/DaveLogs/CLOVAOCR2TDS/cmd"
	"github.com/DaveLogs/CLOVAOCR2TDS/internal/utils"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		utils.ExitOnError("Error loading .env file", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fang.Execute(ctx, cmd.RootCmd); err != nil {
		stop()
		os.Exit(1)
	}
}
