package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/nixxel-company-limited/laundry-print-server/adapter"
	"github.com/nixxel-company-limited/laundry-print-server/escpos"
	"github.com/nixxel-company-limited/laundry-print-server/printer"
	"github.com/nixxel-company-limited/laundry-print-server/server"
	"github.com/nixxel-company-limited/laundry-print-server/tspl"
)

func main() {
	// Initialize Viper to read from environment variables
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_ADDRESS", "localhost:9100")
	viper.SetDefault("RECEIPT_TRANSPORT", "serial")
	viper.SetDefault("RECEIPT_PORT", "")
	viper.SetDefault("LABEL_PORT", "")
	viper.SetDefault("RECEIPT_PRESET", "high")
	viper.SetDefault("LABEL_WIDTH_MM", 75.0)
	viper.SetDefault("LABEL_HEIGHT_MM", 45.0)
	viper.SetDefault("LABEL_DPI", 203)
	viper.SetDefault("LABEL_SPEED", 3)
	viper.SetDefault("LABEL_DENSITY", 8)
	viper.SetDefault("LOG_LEVEL", "info")

	log := newLogger()

	receiptTransport, err := buildReceiptTransport(log)
	if err != nil {
		log.Warn().Err(err).Msg("receipt printer not found, will retry on connect")
		receiptTransport = adapter.NewSerialAdapter(viper.GetString("RECEIPT_PORT"))
	}

	labelTransport, err := buildLabelTransport()
	if err != nil {
		log.Warn().Err(err).Msg("label printer not found, will retry on connect")
		labelTransport = adapter.NewSerialAdapter(viper.GetString("LABEL_PORT"))
	}

	preset := escpos.PresetByName(viper.GetString("RECEIPT_PRESET"))
	labelCfg := tspl.LabelConfig{
		WidthMM:  viper.GetFloat64("LABEL_WIDTH_MM"),
		HeightMM: viper.GetFloat64("LABEL_HEIGHT_MM"),
		DPI:      viper.GetInt("LABEL_DPI"),
		Speed:    viper.GetInt("LABEL_SPEED"),
		Density:  viper.GetInt("LABEL_DENSITY"),
	}

	receipt := printer.NewReceiptSession(receiptTransport, preset, log)
	label := printer.NewLabelSession(labelTransport, labelCfg, log)
	service := printer.NewPrintService(receipt, label, log)

	status := service.ConnectAllPrinters()
	log.Info().Bool("thermal", status.Thermal).Bool("tsc", status.TSC).Msg("initial printer connect")

	address := viper.GetString("SERVER_ADDRESS")
	svr := server.New(service, address, log)

	if err := svr.StartAsync(); err != nil {
		log.Fatal().Err(err).Msg("failed to start bridge")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := svr.Stop(); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func newLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(viper.GetString("LOG_LEVEL"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if os.Getenv("ENV") == "production" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}

	return logger.Level(level).With().
		Timestamp().
		Str("service", "laundry-print-server").
		Logger()
}

// buildReceiptTransport picks serial or raw USB attachment for the thermal
// printer based on config.
func buildReceiptTransport(log zerolog.Logger) (adapter.Adapter, error) {
	if viper.GetString("RECEIPT_TRANSPORT") == "usb" {
		return adapter.NewUSBAdapterAuto(adapter.ReceiptVendorIDs)
	}
	if port := viper.GetString("RECEIPT_PORT"); port != "" {
		log.Info().Str("port", port).Msg("using configured receipt port")
		return adapter.NewSerialAdapter(port), nil
	}
	return adapter.NewSerialAdapterAuto(adapter.ReceiptVendorIDs)
}

func buildLabelTransport() (adapter.Adapter, error) {
	if port := viper.GetString("LABEL_PORT"); port != "" {
		return adapter.NewSerialAdapter(port), nil
	}
	return adapter.NewSerialAdapterAuto(adapter.LabelVendorIDs)
}
