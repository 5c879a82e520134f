package main

import (
	"errors"
	"fmt"
	"io"
)

type Summary struct {
	Region    string
	Date      string
	Buckets   bucketNames
	Database  string
	Table     string
	WorkGroup string
}

func summaryRows(s Summary) [][2]string {
	return [][2]string{
		{"Source Bucket", s.Buckets.Primary},
		{"Access Log Bucket", s.Buckets.AccessLog},
		{"Athena Log Bucket", s.Buckets.Athena},
		{"Athena Database", s.Database},
		{"Athena Table", s.Table},
		{"Athena Workgroup Name", s.WorkGroup},
	}
}

func writeSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\nResources Created\n---------------------\n\n")
	for _, row := range summaryRows(s) {
		fmt.Fprintf(w, "%s : %s\n", row[0], row[1])
	}
}

// describeFailure turns any error from a run into the line shown to the user.
func describeFailure(err error) string {

	if errors.Is(err, ErrInvalidRegion) {
		return "Region key is invalid. Exiting"
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		switch perr.Kind {
		case KindBucketAlreadyOwnedByYou:
			return "Bucket already exists and it's owned by you"
		case KindBucketAlreadyExists:
			return "Bucket name already exists. Please choose a different name"
		case KindParamValidation:
			return "Input parameter error"
		case KindUnexpected:
			return fmt.Sprintf("Unexpected error: %v", perr.Err)
		}
	}

	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Error()
	}

	var qerr *QueryError
	if errors.As(err, &qerr) {
		return qerr.Error()
	}

	return fmt.Sprintf("Unexpected error: %v", err)
}
