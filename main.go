package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bachnx23/trello-backup/backup"
	"github.com/bachnx23/trello-backup/config"
	"github.com/bachnx23/trello-backup/integrations"
	"github.com/bachnx23/trello-backup/internal/models"
)

func init() {
	// Optional .env beside the binary; credentials there override the
	// config file via viper's env binding.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: error loading .env file: %v", err)
	}
}

func main() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := logConfig.Build()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(); err != nil {
		zap.L().Fatal("Backup failed", zap.Error(err))
	}
}

func run() error {
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	client := integrations.NewTrelloClient(cfg)

	personal, err := client.MemberBoards()
	if err != nil {
		return err
	}

	orgs, err := client.MemberOrganizations()
	if err != nil {
		return err
	}

	orgBoards := make(map[string][]models.RawBoard)
	if cfg.BackupAllOrganizationBoards {
		for _, org := range orgs {
			boards, err := client.OrganizationBoards(org)
			if err != nil {
				return err
			}
			orgBoards[org.ID] = boards
		}
	}

	selected, err := backup.SelectBoards(personal, orgBoards, orgs, cfg)
	if err != nil {
		return err
	}

	return backup.NewArchiver(cfg, client).Run(selected)
}
