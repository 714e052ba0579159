package gcsio

import "testing"

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		object  string
		wantErr bool
	}{
		{"gs://p2p-drops/2026-01/users.csv", "p2p-drops", "2026-01/users.csv", false},
		{"gs://p2p-drops/users.csv", "p2p-drops", "users.csv", false},
		{"gs://p2p-drops", "", "", true},
		{"gs://p2p-drops/", "", "", true},
		{"s3://p2p-drops/users.csv", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		bucket, object, err := ParseURI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if bucket != tt.bucket || object != tt.object {
			t.Errorf("ParseURI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, object, tt.bucket, tt.object)
		}
	}
}

func TestObjectName(t *testing.T) {
	if got := ObjectName("gs://p2p-drops/2026-01/app_events.csv"); got != "app_events.csv" {
		t.Errorf("ObjectName = %q, want app_events.csv", got)
	}
	if got := ObjectName("gs://p2p-drops"); got != "p2p-drops" {
		t.Errorf("ObjectName without path = %q, want bucket name", got)
	}
}
