package ops

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"planetd/internal/artefact"
)

// buildBundle packs a trained model.safetensors into the dist/ bundle the
// image build mounts and extracts. The weights file is parsed first; a
// file that is not valid safetensors never becomes a bundle.
func buildBundle(cfg *Config, weightsPath, version, outDir string) error {
	if _, err := artefact.LoadWeights(weightsPath); err != nil {
		return fmt.Errorf("weights rejected: %w", err)
	}

	dir := outDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.ProjectDir, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(dir, fmt.Sprintf("planetgen-weights-%s.tar.gz", version))

	src, err := os.Open(weightsPath)
	if err != nil {
		return err
	}
	defer src.Close()
	st, err := src.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	hdr := &tar.Header{
		Name:    artefact.WeightsFile,
		Mode:    0o644,
		Size:    st.Size(),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		out.Close()
		return err
	}
	if _, err := io.Copy(tw, src); err != nil {
		out.Close()
		return err
	}
	if err := tw.Close(); err != nil {
		out.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	info("[bundle] wrote %s (%d bytes of weights)", outPath, st.Size())
	return nil
}
