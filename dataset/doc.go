// Package dataset reads simulation output tables.
//
// A dataset is a folder holding a tab-separated table.txt as written by
// mumax-style micromagnetic solvers: a time column headed "# t (s)" and one
// magnetization column per region, e.g. "m.region1y ()". Folders are read
// through a [Source], either the local filesystem ([DirSource]) or an S3
// bucket ([S3Source]).
package dataset
