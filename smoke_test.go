package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"merchflow/backend/internal/testutils"
)

func TestSmoke_Startup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping smoke test in short mode")
	}

	suite := testutils.NewIntegrationSuite(t)
	suite.Setup()
	defer suite.Teardown()

	cfg := suite.GetAppConfig()
	cfg.EnableAPI = true
	// No lookupd container in the suite, so the worker stays off.
	cfg.EnableEmbedWorker = false

	_, b, _, _ := runtime.Caller(0)
	basepath := filepath.Dir(b)
	cfg.MigrationPath = fmt.Sprintf("file://%s/migrations", basepath)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := run(ctx, cfg, logger)
		if err != nil && err != context.Canceled {
			t.Logf("app run exited: %v", err)
		}
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d/health", cfg.ServerPort))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 500*time.Millisecond)
}
