package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
)

// NOTE: uses a service account, GOOGLE_APPLICATION_CREDENTIALS must be set
// see https://cloud.google.com/storage/docs/reference/libraries

const RUN_ARCHIVE_BUCKET = "opdir-run-summaries"

// archiveRunSummary writes the finished summary to the archive bucket so a
// run can be audited after the process (and its log file) are gone.
func archiveRunSummary(company Company, summary RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}

	objectName := fmt.Sprintf("%s/%s/%s-%s.json",
		company.ShortName,
		time.Now().Format("2006/01/02"),
		summary.Operation,
		summary.RunID,
	)

	return bytesToGCP(RUN_ARCHIVE_BUCKET, objectName, data)
}

func bytesToGCP(bucketName, objectName string, data []byte) error {
	ctx := context.Background()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	obj := client.Bucket(bucketName).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		ErrorLog.Printf("%v\n", err)
		w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}

	return nil
}
