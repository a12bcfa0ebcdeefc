// Command bulkpay pays every recipient listed in a file through the configured
// wallet, using the same fee and pacing rules as the daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"orbix_wallet/internal/app/bootstrap"
	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/infrastructure/configloader"
	"orbix_wallet/internal/infrastructure/recipientloader"
	"orbix_wallet/internal/pkg/logger"
	"orbix_wallet/internal/pkg/metrics"
	"orbix_wallet/internal/pkg/utils"
)

func main() {
	recipientsPath := flag.String("recipients", "data/recipients.txt", "file with one address,amount pair per line")
	includeFee := flag.Bool("fee", true, "collect the platform fee in one consolidated transfer")
	dryRun := flag.Bool("dry-run", false, "validate and print the quote without sending")
	flag.Parse()

	if err := run(*recipientsPath, *includeFee, *dryRun); err != nil {
		logger.Fatal("Bulk payment failed", "error", err)
	}
	logger.Sync()
}

func run(recipientsPath string, includeFee, dryRun bool) error {
	cfg, err := configloader.Load(configloader.Path())
	if err != nil {
		return err
	}
	logger.Init(logger.Options{Level: cfg.Logging.Level, File: cfg.Logging.File, MaxSizeMB: cfg.Logging.MaxSizeMB, MaxBackups: cfg.Logging.MaxBackups})
	metrics.MustRegisterMetrics()

	recipients, err := recipientloader.NewRecipientFileLoader(recipientsPath, logger.Named("RecipientLoader")).GetRecipients()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	req := entity.BulkPaymentRequest{Recipients: recipients, Token: entity.SymbolMON, IncludeFee: includeFee}
	if err := app.Bulk.ValidateBatch(req); err != nil {
		return err
	}

	var total, totalFee float64
	for _, r := range recipients {
		total += r.Amount
		if includeFee {
			totalFee += app.Fees.PlatformFee(r.Amount)
		}
	}
	fmt.Printf("%d recipients, total %s %s, platform fee %s %s\n",
		len(recipients), mon(total), entity.SymbolMON, mon(totalFee), entity.SymbolMON)
	if dryRun {
		exact, err := exactTotal(recipients, app.Network.NativeCurrency.Decimals)
		if err != nil {
			return err
		}
		fmt.Printf("exact total %s %s\n", exact, entity.SymbolMON)
		return nil
	}

	if _, err := app.Wallet.Connect(ctx); err != nil {
		return err
	}

	result, err := app.Bulk.SendBulkPayment(ctx, req)
	if err != nil {
		return err
	}
	if result.FeeTxHash != "" {
		fmt.Printf("fee      %s  %s\n", mon(result.TotalFee), result.FeeTxHash)
	}
	for _, leg := range result.Legs {
		if leg.Success {
			fmt.Printf("ok       %s  %s  %s\n", utils.FormatAddress(leg.Recipient), mon(leg.NetAmount), leg.TxHash)
		} else {
			fmt.Printf("failed   %s  %s  %s\n", utils.FormatAddress(leg.Recipient), mon(leg.Amount), leg.Error)
		}
	}
	if !result.Success || result.FailedTransactions > 0 {
		return fmt.Errorf("%s", result.Error)
	}
	return nil
}

// exactTotal sums the amounts in base units, as they will be sent.
func exactTotal(recipients []entity.TransferRequest, decimals int32) (string, error) {
	sum := new(big.Int)
	for _, r := range recipients {
		v, err := utils.ToBaseUnits(r.Amount, decimals)
		if err != nil {
			return "", err
		}
		sum.Add(sum, v)
	}
	return utils.FormatBigInt(sum, uint8(decimals))
}

func mon(amount float64) string {
	return utils.FormatAmount(amount, entity.SymbolMON)
}
