package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dvloznov/finance-summary/internal/domain"
)

// CleanedColumns returns the header of the cleaned file.
func CleanedColumns(withTransactionID bool) []string {
	cols := []string{
		domain.ColumnDate,
		domain.ColumnAmount,
		domain.ColumnCustomerID,
		domain.ColumnType,
		domain.ColumnDescription,
		domain.ColumnMerchant,
		"category",
	}
	if withTransactionID {
		cols = append([]string{domain.ColumnTransactionID}, cols...)
	}
	return cols
}

// WriteCleanedCSV writes normalized, classified transactions. Null fields are written empty.
func WriteCleanedCSV(w io.Writer, txs []domain.Transaction, withTransactionID bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CleanedColumns(withTransactionID)); err != nil {
		return fmt.Errorf("WriteCleanedCSV: writing header: %w", err)
	}

	for i, tx := range txs {
		record := make([]string, 0, 8)
		if withTransactionID {
			id := ""
			if tx.TransactionID != nil {
				id = *tx.TransactionID
			}
			record = append(record, id)
		}
		customer := ""
		if tx.CustomerID != nil {
			customer = strconv.FormatInt(*tx.CustomerID, 10)
		}
		record = append(record,
			tx.Date.String(),
			tx.Amount.String(),
			customer,
			string(tx.Type),
			tx.Description,
			tx.Merchant,
			tx.Category,
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCleanedCSV: writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCleanedCSV: flushing: %w", err)
	}
	return nil
}
