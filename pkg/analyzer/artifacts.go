package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"
)

const annotationContainerFile = "container_file_citation"

// ArtifactSource fetches the raw bytes of a container file. *Client
// satisfies it; tests substitute fakes.
type ArtifactSource interface {
	DownloadArtifact(ctx context.Context, art Artifact) ([]byte, error)
}

// ExtractArtifacts scans every message content entry for container file
// citations and returns the referenced artifacts in order.
func ExtractArtifacts(resp *Response) []Artifact {
	var artifacts []Artifact
	for _, msg := range resp.Messages() {
		for _, part := range msg.Content {
			for _, ann := range part.Annotations {
				if ann.Kind != annotationContainerFile {
					continue
				}
				artifacts = append(artifacts, Artifact{
					ContainerID: ann.ContainerID,
					FileID:      ann.FileID,
				})
			}
		}
	}
	return artifacts
}

// Extractor resolves artifact references to bytes and persists them to the
// configured local path with overwrite semantics.
type Extractor struct {
	source ArtifactSource
	path   string
	out    io.Writer
}

// NewExtractor writes artifacts fetched from source to path, reporting
// progress on out.
func NewExtractor(source ArtifactSource, path string, out io.Writer) *Extractor {
	return &Extractor{source: source, path: path, out: out}
}

// Save fetches every referenced artifact and writes it to the target path.
// A later artifact overwrites an earlier one; a response with no artifact
// annotations is a no-op, not an error.
func (e *Extractor) Save(ctx context.Context, resp *Response) error {
	for _, art := range ExtractArtifacts(resp) {
		fmt.Fprintf(e.out, "→ Found visualization: container_id=%s, file_id=%s\n",
			art.ContainerID, art.FileID)

		data, err := e.source.DownloadArtifact(ctx, art)
		if err != nil {
			return fmt.Errorf("download artifact %s/%s: %w", art.ContainerID, art.FileID, err)
		}
		if err := os.WriteFile(e.path, data, 0o644); err != nil {
			return fmt.Errorf("write artifact to %s: %w", e.path, err)
		}

		fmt.Fprintf(e.out, "✓ Saved visualization to: %s\n", e.path)
	}
	return nil
}
