package config

const (
	// TopicEmbed is the NSQ topic for per-chunk embedding tasks produced by
	// document ingestion.
	TopicEmbed = "embed.task"
)
