// Package exporter writes aggregated attendance tables to CSV and Excel
// files for offline use.
package exporter
