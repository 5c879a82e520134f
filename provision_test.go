package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
)

const (
	testSeed         = 42
	stepsWithoutWait = 11
)

var testNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestProvisioner(f *fakeProvider) *Provisioner {
	p := NewProvisioner(f, testConfig())
	p.now = fixedClock
	p.rand = rand.New(rand.NewSource(testSeed))
	p.pollInterval = time.Millisecond
	return p
}

func expectedCalls(primary string) []string {
	suffix := randomSuffix(rand.New(rand.NewSource(testSeed)))
	names := deriveBucketNames(primary, testNow, suffix)
	db := databaseName(primary)
	table := tableName(primary)
	out := s3Location(names.Athena)
	return []string{
		"CreateBucket " + names.Primary,
		"ListBuckets",
		"CreateBucket " + names.AccessLog,
		"CreateBucket " + names.Athena,
		"PutPublicAccessBlock " + names.Primary,
		"PutPublicAccessBlock " + names.AccessLog,
		"PutPublicAccessBlock " + names.Athena,
		fmt.Sprintf("PutBucketLogging %s -> %s/%s", names.Primary, names.AccessLog, names.Primary),
		"StartQuery create database " + db + " @ " + out,
		"StartQuery CREATE EXTERNAL TABLE IF NOT EXISTS " + db + "." + table + " @ " + out,
		"CreateWorkGroup " + primary,
	}
}

func TestProvisionEndToEnd(t *testing.T) {

	f := &fakeProvider{regions: testRegions, ownerID: "owner-123"}
	var pinned []string
	providers := func(region string) (Provider, error) {
		pinned = append(pinned, region)
		return f, nil
	}

	var out bytes.Buffer
	err := provision(
		context.Background(),
		testConfig(),
		providers,
		fixedClock,
		rand.New(rand.NewSource(testSeed)),
		strings.NewReader("3\nmy-logs-demo\n"),
		&out,
	)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(pinned, []string{"us-east-1", "us-west-2"}) {
		t.Errorf("Expected providers for us-east-1 then us-west-2, got %v", pinned)
	}

	want := expectedCalls("my-logs-demo")
	if !reflect.DeepEqual(f.calls, want) {
		t.Errorf("Expected calls:\n%s\ngot:\n%s", strings.Join(want, "\n"), strings.Join(f.calls, "\n"))
	}

	suffix := randomSuffix(rand.New(rand.NewSource(testSeed)))
	for _, name := range []string{
		"Source Bucket : my-logs-demo\n",
		"Access Log Bucket : my-logs-demo-accesslog-2026-10-14-" + suffix + "\n",
		"Athena Log Bucket : my-logs-demo-athena-2026-10-14-" + suffix + "\n",
		"Athena Database : athena_analysis_my_logs_demo\n",
		"Athena Table : log_my_logs_demo\n",
		"Athena Workgroup Name : my-logs-demo\n",
	} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("Expected summary line %q, got:\n%s", name, out.String())
		}
	}

	accessLog := f.buckets[1]
	if accessLog.GrantReadACP != logDeliveryGrant || accessLog.GrantWrite != logDeliveryGrant {
		t.Errorf("Expected log delivery grants, got %+v", accessLog)
	}
	if accessLog.GrantFullControl != "id=owner-123" {
		t.Errorf("Expected full control for id=owner-123, got %s", accessLog.GrantFullControl)
	}
	if f.buckets[0].hasGrants() || f.buckets[2].hasGrants() {
		t.Errorf("Expected private source and athena buckets, got %+v", f.buckets)
	}

	if !strings.Contains(f.queries[1], accessLogRegex) {
		t.Errorf("Expected table DDL to carry the access log regex")
	}

	wg := f.workGroups[0]
	if !wg.Enforce || wg.OutputLocation != "s3://my-logs-demo-athena-2026-10-14-"+suffix || wg.Description != "This workgroup is dedicated to my-logs-demo" {
		t.Errorf("Unexpected workgroup %+v", wg)
	}
}

func TestProvisionInvalidRegion(t *testing.T) {
	for _, input := range []string{"-1\n", "5\n", "west\n"} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			f := &fakeProvider{regions: testRegions}
			err := provision(
				context.Background(),
				testConfig(),
				func(string) (Provider, error) { return f, nil },
				fixedClock,
				rand.New(rand.NewSource(testSeed)),
				strings.NewReader(input+"my-logs-demo\n"),
				&bytes.Buffer{},
			)
			if !errors.Is(err, ErrInvalidRegion) {
				t.Errorf("Expected ErrInvalidRegion, got %v", err)
			}
			if len(f.calls) != 0 {
				t.Errorf("Expected no calls, got %v", f.calls)
			}
		})
	}
}

func TestRunStopsOnBadStatus(t *testing.T) {

	want := expectedCalls("my-logs-demo")

	for failAt := 1; failAt <= stepsWithoutWait; failAt++ {
		t.Run(want[failAt-1], func(t *testing.T) {
			f := &fakeProvider{failAt: failAt, failStatus: 500}

			summary, err := newTestProvisioner(f).Run(context.Background(), Request{Region: "us-west-2", Bucket: "my-logs-demo"})

			var serr *StatusError
			if !errors.As(err, &serr) {
				t.Fatalf("Expected *StatusError, got %v", err)
			}
			if serr.Code != 500 {
				t.Errorf("Expected code 500, got %d", serr.Code)
			}
			if summary != nil {
				t.Errorf("Expected no summary, got %+v", summary)
			}
			if len(f.calls) != failAt {
				t.Errorf("Expected %d calls, got %d: %v", failAt, len(f.calls), f.calls)
			}
		})
	}
}

func TestRunBucketAlreadyExists(t *testing.T) {

	f := &fakeProvider{
		errAt: 1,
		err:   classifyAWSError("CreateBucket", awserr.New(s3.ErrCodeBucketAlreadyExists, "taken", nil)),
	}

	_, err := newTestProvisioner(f).Run(context.Background(), Request{Region: "us-west-2", Bucket: "my-logs-demo"})
	if err == nil {
		t.Fatal("Expected an error")
	}
	if len(f.calls) != 1 {
		t.Errorf("Expected 1 call, got %d: %v", len(f.calls), f.calls)
	}
	want := "Bucket name already exists. Please choose a different name"
	if got := describeFailure(err); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRunWaitsForQueries(t *testing.T) {

	f := &fakeProvider{queryStates: []string{"RUNNING", QuerySucceeded, QueryFailed}}
	p := newTestProvisioner(f)
	p.waitQueries = true

	_, err := p.Run(context.Background(), Request{Region: "us-west-2", Bucket: "my-logs-demo"})

	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("Expected *QueryError, got %v", err)
	}
	if qerr.Resource != "log_my_logs_demo" || qerr.Status.State != QueryFailed {
		t.Errorf("Unexpected query error %+v", qerr)
	}

	tail := f.calls[len(f.calls)-5:]
	if !strings.HasPrefix(tail[0], "StartQuery create database") ||
		tail[1] != "QueryState q-1" ||
		tail[2] != "QueryState q-1" ||
		!strings.HasPrefix(tail[3], "StartQuery CREATE EXTERNAL TABLE") ||
		tail[4] != "QueryState q-2" {
		t.Errorf("Unexpected call order: %v", tail)
	}
	if len(f.workGroups) != 0 {
		t.Errorf("Expected no workgroup after failed query, got %+v", f.workGroups)
	}
}

func TestRunUploadsManifest(t *testing.T) {

	f := &fakeProvider{}
	p := newTestProvisioner(f)
	p.manifest = true

	summary, err := p.Run(context.Background(), Request{Region: "us-west-2", Bucket: "my-logs-demo"})
	if err != nil {
		t.Fatal(err)
	}

	if len(f.calls) != stepsWithoutWait+1 {
		t.Fatalf("Expected %d calls, got %d", stepsWithoutWait+1, len(f.calls))
	}

	key := summary.Buckets.Athena + "/provisioning/2026-10-14-my-logs-demo.tsv"
	body, ok := f.uploads[key]
	if !ok {
		t.Fatalf("Expected upload to %s, got %v", key, f.uploads)
	}
	if !strings.Contains(body, "Athena Table\tlog_my_logs_demo\n") {
		t.Errorf("Expected manifest row for the table, got:\n%s", body)
	}
	if lines := strings.Count(body, "\n"); lines != 6 {
		t.Errorf("Expected 6 manifest rows, got %d", lines)
	}
}
