package api

import (
	"os"

	"voxcut/internal/logging"
	"voxcut/internal/search"
	"voxcut/internal/services"
	"voxcut/internal/transcript"
)

// LoadDocuments resolves each input to a parsed transcript. Inputs may
// be media files with a transcript sidecar or transcript files
// themselves; unusable inputs are logged and skipped. An entirely
// empty result is an error so callers never search nothing silently.
func (s *Service) LoadDocuments(inputs []string) ([]search.Document, error) {
	if len(inputs) == 0 {
		return nil, services.Wrap(services.ErrValidation, "api", "inputs",
			"at least one input file is required", nil)
	}
	docs := make([]search.Document, 0, len(inputs))
	for _, input := range inputs {
		if doc, ok := s.loadDocument(input); ok {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "api", "inputs",
			"no transcripts found for any input; run \"voxcut transcribe\" first", nil)
	}
	return docs, nil
}

func (s *Service) loadDocument(input string) (search.Document, bool) {
	if transcript.IsTranscript(input) {
		segments, err := transcript.Parse(input)
		if err != nil {
			s.logger.Warn("skipping unreadable transcript",
				logging.String("path", input), logging.Error(err))
			return search.Document{}, false
		}
		file := input
		if media, ok := transcript.FindMedia(input); ok {
			file = media
		}
		return search.Document{File: file, Segments: segments}, true
	}

	if _, err := os.Stat(input); err != nil {
		s.logger.Warn("skipping missing input", logging.String("path", input), logging.Error(err))
		return search.Document{}, false
	}
	sidecar, ok := transcript.Find(input, "")
	if !ok {
		s.logger.Warn("no transcript found for input",
			logging.String("path", input),
			logging.String("hint", "run \"voxcut transcribe\" to generate one"))
		return search.Document{}, false
	}
	segments, err := transcript.Parse(sidecar)
	if err != nil {
		s.logger.Warn("skipping unreadable transcript",
			logging.String("path", sidecar), logging.Error(err))
		return search.Document{}, false
	}
	return search.Document{File: input, Segments: segments}, true
}
