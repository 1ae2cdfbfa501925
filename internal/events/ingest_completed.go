package events

var IngestCompletedTopic = "IngestCompletedEvent"

// IngestCompleted is published after a scheduled ingestion run has written its
// output file. Subscribers only ever receive the file path, never in-memory
// records: the serialized form stays the sole contract between pipelines.
type IngestCompleted struct {
	Path     string
	Fetched  int
	Admitted int
}
