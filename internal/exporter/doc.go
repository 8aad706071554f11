// Package exporter persists result tables as CSV files.
//
// CSVWriter writes a header row followed by the records, creating missing
// parent directories. WriteTable quotes every field, which is the layout
// downstream consumers of the SIPOT extracts expect:
//
//	writer := exporter.NewCSVWriter(logger)
//	if err := writer.WriteTable("out/licitaciones.csv", run.Primary); err != nil {
//	    return err
//	}
package exporter
