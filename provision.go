package main

import (
	"context"
	"math/rand"
	"time"
)

const logDeliveryGrant = "uri=http://acs.amazonaws.com/groups/s3/LogDelivery"

type Request struct {
	Region string
	Bucket string
}

// Provisioner creates the buckets and Athena resources for one primary
// bucket. It makes no attempt to undo earlier steps when a later one fails.
type Provisioner struct {
	provider     Provider
	now          func() time.Time
	rand         *rand.Rand
	waitQueries  bool
	pollInterval time.Duration
	manifest     bool
}

func NewProvisioner(provider Provider, conf config) *Provisioner {
	return &Provisioner{
		provider:     provider,
		now:          time.Now,
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		waitQueries:  *conf.waitQueries,
		pollInterval: time.Duration(*conf.pollInterval) * time.Second,
		manifest:     *conf.uploadManifest,
	}
}

// runState carries the values each step produces for the ones after it.
type runState struct {
	ctx     context.Context
	summary Summary
	ownerID string
}

type step struct {
	name string
	do   func(*runState) error
}

// Run executes every step in order, stopping at the first failure. The
// returned summary describes the resources as named for this run; on error
// it is nil.
func (p *Provisioner) Run(ctx context.Context, req Request) (*Summary, error) {

	now := p.now()
	names := deriveBucketNames(req.Bucket, now, randomSuffix(p.rand))

	r := &runState{
		ctx: ctx,
		summary: Summary{
			Region:    req.Region,
			Date:      now.Format(dateLayout),
			Buckets:   names,
			Database:  databaseName(req.Bucket),
			Table:     tableName(req.Bucket),
			WorkGroup: req.Bucket,
		},
	}

	for _, s := range p.steps() {
		Debug.Printf("Step: %s", s.name)
		if err := s.do(r); err != nil {
			return nil, err
		}
	}
	return &r.summary, nil
}

func (p *Provisioner) steps() []step {
	steps := []step{
		{"create source bucket", p.createSourceBucket},
		{"canonical user id", p.lookupOwner},
		{"create access log bucket", p.createAccessLogBucket},
		{"create athena bucket", p.createAthenaBucket},
		{"block public access source", p.blockPublicAccess(func(n bucketNames) string { return n.Primary })},
		{"block public access access log", p.blockPublicAccess(func(n bucketNames) string { return n.AccessLog })},
		{"block public access athena", p.blockPublicAccess(func(n bucketNames) string { return n.Athena })},
		{"enable access logging", p.enableAccessLogging},
		{"create database", p.createDatabase},
		{"create table", p.createTable},
		{"create workgroup", p.createWorkGroup},
	}
	if p.manifest {
		steps = append(steps, step{"upload manifest", p.uploadManifest})
	}
	return steps
}

func (p *Provisioner) createSourceBucket(r *runState) error {
	bucket := r.summary.Buckets.Primary
	res, err := p.provider.CreateBucket(r.ctx, BucketSpec{Name: bucket})
	if err != nil {
		return err
	}
	if err := checkStatus("creation of source bucket", bucket, res); err != nil {
		return err
	}
	Info.Printf("Source Bucket %s is successfully created", bucket)
	return nil
}

// lookupOwner fetches the canonical user id needed to keep full control of
// the access log bucket once log delivery grants are set on it.
func (p *Provisioner) lookupOwner(r *runState) error {
	id, res, err := p.provider.CanonicalOwnerID(r.ctx)
	if err != nil {
		return err
	}
	if err := checkStatus("list bucket operation", "to retrieve Canonical User ID", res); err != nil {
		return err
	}
	r.ownerID = id
	Info.Printf("Successfully retrieved Canonical User ID")
	return nil
}

func (p *Provisioner) createAccessLogBucket(r *runState) error {
	bucket := r.summary.Buckets.AccessLog
	res, err := p.provider.CreateBucket(r.ctx, BucketSpec{
		Name:             bucket,
		GrantReadACP:     logDeliveryGrant,
		GrantWrite:       logDeliveryGrant,
		GrantFullControl: "id=" + r.ownerID,
	})
	if err != nil {
		return err
	}
	if err := checkStatus("creation of access log bucket", bucket, res); err != nil {
		return err
	}
	Info.Printf("Access Log bucket %s is successfully created", bucket)
	return nil
}

func (p *Provisioner) createAthenaBucket(r *runState) error {
	bucket := r.summary.Buckets.Athena
	res, err := p.provider.CreateBucket(r.ctx, BucketSpec{Name: bucket})
	if err != nil {
		return err
	}
	if err := checkStatus("creation of Athena log bucket", bucket, res); err != nil {
		return err
	}
	Info.Printf("Athena Log Bucket %s is successfully created", bucket)
	return nil
}

func (p *Provisioner) blockPublicAccess(pick func(bucketNames) string) func(*runState) error {
	return func(r *runState) error {
		bucket := pick(r.summary.Buckets)
		res, err := p.provider.BlockPublicAccess(r.ctx, bucket)
		if err != nil {
			return err
		}
		if err := checkStatus("operation to block public access to bucket", bucket, res); err != nil {
			return err
		}
		Info.Printf("Successfully blocked public access to %s", bucket)
		return nil
	}
}

func (p *Provisioner) enableAccessLogging(r *runState) error {
	names := r.summary.Buckets
	res, err := p.provider.EnableAccessLogging(r.ctx, names.Primary, names.AccessLog, names.Primary)
	if err != nil {
		return err
	}
	if err := checkStatus("operation to enable access logging on bucket", names.Primary, res); err != nil {
		return err
	}
	Info.Printf("Successfully enabled the Access Logging to the Bucket %s with Target Bucket set to %s", names.Primary, names.AccessLog)
	return nil
}

func (p *Provisioner) createDatabase(r *runState) error {
	db := r.summary.Database
	if err := p.query(r, createDatabaseQuery(db), "creation of Athena DB", db); err != nil {
		return err
	}
	Info.Printf("Athena Database %s is successfully created", db)
	return nil
}

func (p *Provisioner) createTable(r *runState) error {
	s := r.summary
	if err := p.query(r, createTableQuery(s.Database, s.Table, s.Buckets.AccessLog), "creation of Athena DB Table", s.Table); err != nil {
		return err
	}
	Info.Printf("Athena Database Table %s is successfully created", s.Table)
	return nil
}

func (p *Provisioner) query(r *runState, sql, op, resource string) error {
	id, res, err := p.provider.StartQuery(r.ctx, sql, s3Location(r.summary.Buckets.Athena))
	if err != nil {
		return err
	}
	if err := checkStatus(op, resource, res); err != nil {
		return err
	}
	if p.waitQueries {
		return p.waitForQuery(r.ctx, id, resource)
	}
	return nil
}

// waitForQuery polls until the query reaches a final state.
func (p *Provisioner) waitForQuery(ctx context.Context, id, resource string) error {
	for {
		status, err := p.provider.QueryState(ctx, id)
		if err != nil {
			return err
		}
		Debug.Printf("Query %s state=%s", id, status.State)

		switch status.State {
		case QuerySucceeded:
			return nil
		case QueryFailed, QueryCancelled:
			return &QueryError{Resource: resource, Status: status}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}
}

func (p *Provisioner) createWorkGroup(r *runState) error {
	s := r.summary
	res, err := p.provider.CreateWorkGroup(r.ctx, WorkGroupSpec{
		Name:           s.WorkGroup,
		OutputLocation: s3Location(s.Buckets.Athena),
		Enforce:        true,
		Description:    "This workgroup is dedicated to " + s.Buckets.Primary,
	})
	if err != nil {
		return err
	}
	if err := checkStatus("creation of Workgroup", s.WorkGroup, res); err != nil {
		return err
	}
	Info.Printf("Workgroup %s is successfully created", s.WorkGroup)
	return nil
}

func (p *Provisioner) uploadManifest(r *runState) error {
	buf, err := WriteManifest(r.summary)
	if err != nil {
		return err
	}
	return p.provider.UploadObject(r.ctx, r.summary.Buckets.Athena, manifestKey(r.summary), buf)
}
