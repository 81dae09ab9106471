// Package roster reads and edits the roster/config CSV and the season
// boundary table.
//
// The roster file is column oriented: its header names the columns and
// each column is an independent list. The athlete column is the roster;
// the other columns are catalogues (injury sites, injuries, severities,
// statuses) plus a color column paired row by row with the status column.
// Cells missing from short rows are read as "".
package roster
