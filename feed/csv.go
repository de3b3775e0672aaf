package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"commission-fees/app"
	"commission-fees/domain"
	"commission-fees/shared"
)

const (
	colDate = iota
	colUserID
	colUserType
	colOperationType
	colAmount
	colCurrency
	columnCount
)

// ParseCSV reads rows of the form
//
//	2016-01-05,1,natural,cash_in,200.00,EUR
//
// into operation records. Blank lines are skipped. A malformed row aborts
// the parse with an error naming its line in the input.
func ParseCSV(r io.Reader) ([]app.OperationRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []app.OperationRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError already names the line.
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		rec, err := parseRow(row)
		if err != nil {
			line, _ := reader.FieldPos(colDate)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (app.OperationRecord, error) {
	if len(row) != columnCount {
		return app.OperationRecord{}, fmt.Errorf("%w: expected %d columns, got %d", domain.ErrInvalidOperation, columnCount, len(row))
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(row[colDate]))
	if err != nil {
		return app.OperationRecord{}, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidOperation, row[colDate])
	}
	userID, err := strconv.Atoi(strings.TrimSpace(row[colUserID]))
	if err != nil || userID < 0 {
		return app.OperationRecord{}, fmt.Errorf("%w: invalid user id %q", domain.ErrInvalidOperation, row[colUserID])
	}
	class, err := shared.ParseUserClass(row[colUserType])
	if err != nil {
		return app.OperationRecord{}, fmt.Errorf("%w: %v", domain.ErrInvalidOperation, err)
	}
	kind, err := shared.ParseOperationKind(row[colOperationType])
	if err != nil {
		return app.OperationRecord{}, fmt.Errorf("%w: %v", domain.ErrInvalidOperation, err)
	}
	amount, err := domain.ParseMinorUnits(strings.TrimSpace(row[colAmount]))
	if err != nil {
		return app.OperationRecord{}, fmt.Errorf("%w: %v", domain.ErrInvalidOperation, err)
	}
	currency, err := shared.ParseCurrency(row[colCurrency])
	if err != nil {
		return app.OperationRecord{}, fmt.Errorf("%w: %v", domain.ErrInvalidOperation, err)
	}

	return app.OperationRecord{
		Date:      date,
		UserID:    userID,
		UserClass: class,
		Kind:      kind,
		Amount:    amount,
		Currency:  currency,
	}, nil
}
