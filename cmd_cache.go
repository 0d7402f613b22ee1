package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheDumpCmd)
	cacheDumpCmd.Flags().String("service", "", "only dump records of this music service (spotify, deezer)")
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the artist store",
}

var cacheDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every cached artist record as a JSON line",
	Args:  cobra.NoArgs,
	RunE:  runCacheDump,
}

type dumpLine struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func runCacheDump(cmd *cobra.Command, args []string) error {
	config := GetEnv()
	logger := setupLogging(config)

	service, err := cmd.Flags().GetString("service")
	if err != nil {
		return err
	}
	prefix := ""
	if service != "" {
		prefix = service + ":"
	}

	store, err := openStore(cmd.Context(), config, otel.Tracer(serviceName), logger, nil)
	if err != nil {
		return fmt.Errorf("open artist store: %w", err)
	}
	defer store.Close()

	encoder := json.NewEncoder(cmd.OutOrStdout())
	count := 0

	err = store.ForEach(cmd.Context(), func(_ context.Context, key string, value []byte) error {
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		count++
		return encoder.Encode(dumpLine{Key: key, Value: json.RawMessage(value)})
	})
	if err != nil {
		return err
	}

	logger.WithField("records", count).Info("Artist store dumped")
	return nil
}
