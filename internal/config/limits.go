package config

const (
	// MaxUploadBytes is the default cap on uploaded document size.
	// 20MB covers any realistic prose document; anything larger is
	// almost certainly scanned images, which extraction cannot use anyway.
	MaxUploadBytes = 20 << 20

	// MaxFilenameLength is the maximum length for uploaded filenames.
	// Limited to 255 to match common filesystem limits and provide
	// reasonable UX (names should be short and descriptive).
	MaxFilenameLength = 255

	// DefaultRewriteMaxTokens bounds the rewrite completion size so a
	// single request cannot incur unbounded cost or latency.
	DefaultRewriteMaxTokens = 500

	// RewriteTemperature is the fixed sampling temperature for editorial
	// rewriting: mid-range, neither deterministic nor maximally random.
	RewriteTemperature = 0.7
)
