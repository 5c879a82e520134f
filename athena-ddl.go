package main

import (
	"fmt"
	"strings"
)

type tableColumn struct {
	Name string
	Type string
}

// accessLogColumns follows the field order of an S3 server access log line.
// The trailing columns are only present in newer log records.
var accessLogColumns = []tableColumn{
	{"BucketOwner", "STRING"},
	{"Bucket", "STRING"},
	{"RequestDateTime", "STRING"},
	{"RemoteIP", "STRING"},
	{"Requester", "STRING"},
	{"RequestID", "STRING"},
	{"Operation", "STRING"},
	{"Key", "STRING"},
	{"RequestURI_operation", "STRING"},
	{"RequestURI_key", "STRING"},
	{"RequestURI_httpProtoversion", "STRING"},
	{"HTTPstatus", "STRING"},
	{"ErrorCode", "STRING"},
	{"BytesSent", "BIGINT"},
	{"ObjectSize", "BIGINT"},
	{"TotalTime", "STRING"},
	{"TurnAroundTime", "STRING"},
	{"Referrer", "STRING"},
	{"UserAgent", "STRING"},
	{"VersionId", "STRING"},
	{"HostId", "STRING"},
	{"SigV", "STRING"},
	{"CipherSuite", "STRING"},
	{"AuthType", "STRING"},
	{"EndPoint", "STRING"},
	{"TLSVersion", "STRING"},
}

// accessLogRegex is passed to RegexSerDe exactly as written; the escaping is
// what Athena expects inside a quoted SERDEPROPERTIES value.
const accessLogRegex = `([^ ]*) ([^ ]*) \\\[(.*?)\\\] ([^ ]*) ([^ ]*) ([^ ]*) ([^ ]*) ([^ ]*) \\\"([^ ]*) ([^ ]*) (- |[^ ]*)\\\" (-|[0-9]*) ([^ ]*) ([^ ]*) ([^ ]*) ([^ ]*) ([^ ]*) ([^ ]*) ("[^"]*") ([^ ]*)(?: ([^ ]*) ([^ ]*) ([^ ]*) ([^ ]*) ([^ ]*) ([^ ]*))?.*$`

const regexSerDe = "org.apache.hadoop.hive.serde2.RegexSerDe"

func createDatabaseQuery(database string) string {
	return "create database " + database
}

func createTableQuery(database, table, accessLogBucket string) string {

	var columns strings.Builder
	for i, c := range accessLogColumns {
		if i > 0 {
			columns.WriteString(",\n")
		}
		fmt.Fprintf(&columns, "  %s %s", c.Name, c.Type)
	}

	return fmt.Sprintf(
		"CREATE EXTERNAL TABLE IF NOT EXISTS %s.%s(\n%s\n)\n"+
			"ROW FORMAT SERDE '%s'\n"+
			"WITH SERDEPROPERTIES (\n"+
			"  'serialization.format' = '1', 'input.regex' = '%s' )\n"+
			"LOCATION '%s/'",
		database,
		table,
		columns.String(),
		regexSerDe,
		accessLogRegex,
		s3Location(accessLogBucket),
	)
}
