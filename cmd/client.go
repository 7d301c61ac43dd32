package cmd

import (
	"fmt"
	"log"

	"github.com/nagacity/mynaga-console/internal/api"
)

// newAPIClient builds the REST client from the resolved configuration.
func newAPIClient(config Config, logger *log.Logger) (*api.Client, error) {
	client, err := api.New(api.Options{
		BaseURL: config.API.BaseURL,
		Timeout: config.API.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API client: %w", err)
	}
	return client, nil
}
