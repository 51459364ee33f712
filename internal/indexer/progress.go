package indexer

// ProgressReporter provides callbacks for reporting indexing progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryComplete is called once the files needing analysis are known.
	OnDiscoveryComplete(changed, unchanged, deleted int)

	// OnFileProcessed is called after each changed file is analyzed.
	OnFileProcessed(filePath string)

	// OnComplete is called when indexing completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnDiscoveryComplete(changed, unchanged, deleted int) {}
func (NoOpProgressReporter) OnFileProcessed(filePath string)                    {}
func (NoOpProgressReporter) OnComplete(stats *Stats)                            {}
