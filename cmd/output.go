package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"invoicegate/internal/normalize"
	"invoicegate/pkg/models"
)

// readRecord decodes one raw candidate record from a JSON file. Decode
// failures are mapped to the input-shape error taxonomy, since a record
// that does not match the InvoiceRecord shape is a caller-side
// precondition violation.
func readRecord(path string) (*models.InvoiceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var rec models.InvoiceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return nil, normalize.NewInputShapeError(typeErr.Field, typeErr.Type.String())
		}
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &rec, nil
}

// writeOutput marshals the output as indented JSON to the given file,
// or to stdout when the path is empty.
func writeOutput(output any, path string) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
