package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/jamiealquiza/envy"
)

type config struct {
	region         *string
	bucket         *string
	lookupRegion   *string
	profile        *string
	waitQueries    *bool
	pollInterval   *int
	uploadManifest *bool
	logVerbose     *bool
}

func main() {

	conf := config{
		flag.String("region", "", "AWS region to create resources in; prompts when empty"),
		flag.String("bucket", "", "Name of the source S3 bucket; prompts when empty"),
		flag.String("lookupregion", "us-east-1", "AWS region used to list the available regions"),
		flag.String("profile", "", "AWS shared config profile"),
		flag.Bool("wait", false, "Wait for each Athena DDL query to finish before the next step"),
		flag.Int("pollinterval", 2, "Seconds between Athena query state checks, 1+"),
		flag.Bool("manifest", false, "Upload a TSV list of the created resources to the Athena bucket"),
		flag.Bool("verbose", false, "Show detailed information during run"),
	}
	envy.Parse("S3ATHENA")
	flag.Parse()

	if *conf.lookupRegion == "" ||
		*conf.pollInterval < 1 {
		flag.Usage()
		os.Exit(1)
	}

	logInit(conf)

	gracefulStop(func() {
		Error.Printf("Interrupted. Resources created so far are left in place")
	})

	if err := run(context.Background(), conf, os.Stdin, os.Stdout); err != nil {
		Error.Printf("%v", err)
		fmt.Fprintln(os.Stdout, describeFailure(err))
		os.Exit(1)
	}
}

// providerFactory returns a Provider pinned to region.
type providerFactory func(region string) (Provider, error)

func awsProviderFactory(conf config) providerFactory {
	return func(region string) (Provider, error) {
		sess, err := newSession(region, *conf.profile)
		if err != nil {
			return nil, fmt.Errorf("AWS Session Error: %w", err)
		}
		return newAWSProvider(sess), nil
	}
}

func run(ctx context.Context, conf config, stdin io.Reader, stdout io.Writer) error {
	seed := rand.New(rand.NewSource(time.Now().UnixNano()))
	return provision(ctx, conf, awsProviderFactory(conf), time.Now, seed, stdin, stdout)
}

// provision collects the region and bucket name, then runs the provisioner
// against a provider pinned to the chosen region.
func provision(ctx context.Context, conf config, providers providerFactory, now func() time.Time, rnd *rand.Rand, stdin io.Reader, stdout io.Writer) error {

	lookup, err := providers(*conf.lookupRegion)
	if err != nil {
		return err
	}

	regions, err := lookup.Regions(ctx)
	if err != nil {
		return err
	}

	in := bufio.NewReader(stdin)

	region, err := selectRegion(in, stdout, regions, *conf.region)
	if err != nil {
		return err
	}

	bucket, err := readBucketName(in, stdout, *conf.bucket)
	if err != nil {
		return err
	}

	provider, err := providers(region)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\nLogs\n-------\n\n")

	p := NewProvisioner(provider, conf)
	p.now = now
	p.rand = rnd

	summary, err := p.Run(ctx, Request{Region: region, Bucket: bucket})
	if err != nil {
		return err
	}

	writeSummary(stdout, *summary)
	return nil
}
