package main

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type bucketNames struct {
	Primary   string
	AccessLog string
	Athena    string
}

func deriveBucketNames(primary string, now time.Time, suffix string) bucketNames {
	date := now.Format(dateLayout)
	return bucketNames{
		Primary:   primary,
		AccessLog: accessLogBucketName(primary, date, suffix),
		Athena:    athenaBucketName(primary, date, suffix),
	}
}

func accessLogBucketName(primary, date, suffix string) string {
	return primary + "-accesslog-" + date + "-" + suffix
}

func athenaBucketName(primary, date, suffix string) string {
	return primary + "-athena-" + date + "-" + suffix
}

// athenaIdentifier makes s usable as an Athena database or table name,
// which may not contain hyphens.
func athenaIdentifier(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

func databaseName(primary string) string {
	return athenaIdentifier("athena_analysis_" + primary)
}

func tableName(primary string) string {
	return athenaIdentifier("log_" + primary)
}

func s3Location(bucket string) string {
	return "s3://" + bucket
}
