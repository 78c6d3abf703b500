// Package csvreview round-trips the review inventory through a CSV file.
//
// Export writes one row per document joined with its label. Import reads
// a corrected file back and applies each row as a human label. Rows are
// independent: a rejected row is reported with its row number and file
// id and does not stop the rows after it.
package csvreview
