package recipientloader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
)

const defaultRecipientFilePath = "data/recipients.txt"

// RecipientFileLoader reads bulk payment recipients from a text file with one
// "address,amount" pair per line. Blank lines and lines starting with # are skipped.
type RecipientFileLoader struct {
	filePath string
	logger   port.Logger
}

// NewRecipientFileLoader creates a new RecipientFileLoader. An empty path uses data/recipients.txt.
func NewRecipientFileLoader(filePath string, logger port.Logger) *RecipientFileLoader {
	if filePath == "" {
		filePath = defaultRecipientFilePath
	}
	return &RecipientFileLoader{
		filePath: filePath,
		logger:   logger,
	}
}

// GetRecipients reads every recipient from the configured file.
func (l *RecipientFileLoader) GetRecipients() ([]entity.TransferRequest, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipient file %s: %w", l.filePath, err)
	}
	defer file.Close()

	recipients, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("error reading recipient file %s: %w", l.filePath, err)
	}

	l.logger.Info("Recipients loaded successfully from file", "count", len(recipients), "path", l.filePath)
	return recipients, nil
}

// Parse reads "address,amount" lines. Unlike the per-leg validation done before
// sending, a malformed line is an error here so the whole file is rejected.
func Parse(r io.Reader) ([]entity.TransferRequest, error) {
	var recipients []entity.TransferRequest
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		address, amountStr, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("line %d: expected address,amount", lineNum)
		}
		address = strings.TrimSpace(address)
		if !entity.IsValidAddress(address) {
			return nil, fmt.Errorf("line %d: invalid address %q", lineNum, address)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(amountStr), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount %q: %w", lineNum, strings.TrimSpace(amountStr), err)
		}
		recipients = append(recipients, entity.TransferRequest{Address: address, Amount: amount})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return recipients, nil
}
