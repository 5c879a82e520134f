package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func regionTable(regions []string) map[int]string {
	m := make(map[int]string, len(regions))
	for i, r := range regions {
		m[i] = r
	}
	return m
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// selectRegion resolves the region to provision in. A preset code skips the
// prompt but must still be one of regions.
func selectRegion(in *bufio.Reader, out io.Writer, regions []string, preset string) (string, error) {

	table := regionTable(regions)

	if preset != "" {
		for _, r := range table {
			if r == preset {
				return preset, nil
			}
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidRegion, preset)
	}

	fmt.Fprintf(out, "\n--------------\nAWS S3 Region :\n--------------\n\n")
	for i := 0; i < len(regions); i++ {
		fmt.Fprintf(out, "[%d] %s\n", i, table[i])
	}
	fmt.Fprintf(out, "\nInput the Region Number : ")

	line, err := readLine(in)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRegion, err)
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRegion, line)
	}

	region, ok := table[n]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrInvalidRegion, n)
	}
	return region, nil
}

func readBucketName(in *bufio.Reader, out io.Writer, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	fmt.Fprintf(out, "\nInput your bucket name : ")
	return readLine(in)
}
