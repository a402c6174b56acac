package util

import "strings"

// SplitS3Path splits an S3 location of the form "bucket/key/with/prefix" into
// bucket and key. A leading "s3://" scheme is tolerated.
func SplitS3Path(path string) (bucket, key string) {
	path = strings.TrimPrefix(path, "s3://")
	parts := strings.SplitN(path, "/", 2)
	bucket = parts[0]
	if len(parts) > 1 {
		key = parts[1]
	}
	return bucket, key
}

// SplitS3URI extracts bucket and key from an https-style S3 object URI such
// as the TranscriptFileUri returned by a transcription job
// (https://s3.<region>.amazonaws.com/<bucket>/<key>).
func SplitS3URI(uri string) (bucket, key string) {
	uri = strings.TrimPrefix(uri, "https://")
	parts := strings.SplitN(uri, "/", 3)
	if len(parts) < 2 {
		return "", ""
	}
	bucket = parts[1]
	if len(parts) > 2 {
		key = parts[2]
	}
	return bucket, key
}
