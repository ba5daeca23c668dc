package main

import (
	"context"

	"stockmon/cmd/stockmon/commands"
	"stockmon/lib/serviceutil"
	"stockmon/lib/telemetry"
)

func main() {
	ctx := context.Background()

	tel, err := telemetry.SetupFromEnv(ctx, "stockmon")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer tel.Shutdown(ctx)

	telemetry.InitSlog(false)
	commands.ExecuteContext(ctx)
}
