package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "/usr/local/var/kujo/data/vector_store"
	}
	if cfg.Storage.Collection == "" {
		cfg.Storage.Collection = "complaints"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Storage.Metric == "" {
		cfg.Storage.Metric = "cosine"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "hash"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.OpenAI.Model == "" {
		cfg.Embedding.OpenAI.Model = "text-embedding-3-small"
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 1000
	}
	if cfg.Ingest.ChunkOverlap == 0 && cfg.Ingest.ChunkSize > 0 {
		cfg.Ingest.ChunkOverlap = cfg.Ingest.ChunkSize / 10
	}
	if cfg.Ingest.Extensions == nil {
		cfg.Ingest.Extensions = []string{".parquet", ".csv", ".xlsx", ".jsonl"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Ingest.Directories) > 0 && cfg.Ingest.Recursive == nil {
		t := true
		cfg.Ingest.Recursive = &t
	}
	if cfg.Retrieval.DefaultK == 0 {
		cfg.Retrieval.DefaultK = 5
	}
	if cfg.Retrieval.MaxK == 0 {
		cfg.Retrieval.MaxK = 100
	}
}
