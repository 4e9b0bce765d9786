package archive

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/neoatlantis/na-gribtools/internal/dataset"
	"github.com/neoatlantis/na-gribtools/internal/models"
)

// artifactMagic opens every ICONDB container file.
var artifactMagic = []byte("ICONDB2\n")

// ArtifactManifest is the JSON header of a container: what the artifact was
// built from and where each payload section lives.
type ArtifactManifest struct {
	Release       string             `json:"release"`
	Fingerprint   string             `json:"fingerprint"`
	Variables     []dataset.Variable `json:"variables"`
	Steps         []int              `json:"steps"`
	Sections      []SectionInfo      `json:"sections"`
	PayloadSHA256 string             `json:"payload_sha256"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SectionInfo locates one variable/step payload inside the container.
// Offsets are relative to the start of the payload region.
type SectionInfo struct {
	VariableID string `json:"variable_id"`
	Step       int    `json:"step"`
	Offset     int64  `json:"offset"`
	Length     int64  `json:"length"`
}

// ArtifactSection is one variable/step payload handed to WriteArtifact.
type ArtifactSection struct {
	VariableID string
	Step       int
	Data       []byte
}

// WriteArtifact assembles a container at path: magic, length-prefixed JSON
// manifest, then the concatenated payload sections. The file is staged next
// to the target and renamed into place after an fsync, so a crash never
// leaves a half-written artifact at the final path.
func WriteArtifact(path string, release models.ReleaseInstant, fingerprint string, shape dataset.Descriptor, sections []ArtifactSection) (models.ArtifactInfo, error) {
	manifest := ArtifactManifest{
		Release:     release.Identifier(),
		Fingerprint: fingerprint,
		Variables:   shape.Variables,
		Steps:       shape.Steps,
		CreatedAt:   time.Now().UTC(),
	}

	payloadHash := sha256.New()
	var offset int64
	for _, s := range sections {
		manifest.Sections = append(manifest.Sections, SectionInfo{
			VariableID: s.VariableID,
			Step:       s.Step,
			Offset:     offset,
			Length:     int64(len(s.Data)),
		})
		payloadHash.Write(s.Data)
		offset += int64(len(s.Data))
	}
	manifest.PayloadSHA256 = hex.EncodeToString(payloadHash.Sum(nil))

	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return models.ArtifactInfo{}, fmt.Errorf("failed to marshal artifact manifest: %w", err)
	}

	tmp := path + tempSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return models.ArtifactInfo{}, fmt.Errorf("failed to create staging file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(manifestJSON)))
	for _, chunk := range [][]byte{artifactMagic, lenBuf[:], manifestJSON} {
		if _, err := f.Write(chunk); err != nil {
			return models.ArtifactInfo{}, fmt.Errorf("failed to write artifact header: %w", err)
		}
	}
	for _, s := range sections {
		if _, err := f.Write(s.Data); err != nil {
			return models.ArtifactInfo{}, fmt.Errorf("failed to write artifact payload: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		return models.ArtifactInfo{}, fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return models.ArtifactInfo{}, fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return models.ArtifactInfo{}, fmt.Errorf("failed to publish artifact: %w", err)
	}

	size := int64(len(artifactMagic)) + 4 + int64(len(manifestJSON)) + offset
	return models.ArtifactInfo{
		Path:          path,
		SizeBytes:     size,
		PayloadSHA256: manifest.PayloadSHA256,
	}, nil
}

// Artifact is an opened, verified container.
type Artifact struct {
	f          *os.File
	manifest   ArtifactManifest
	payloadOff int64
}

// OpenArtifact opens a container, checks the magic and re-hashes the payload
// against the recorded checksum. Any mismatch comes back wrapped in
// models.ErrCorruptEntry.
func OpenArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	magic := make([]byte, len(artifactMagic))
	if _, err := io.ReadFull(f, magic); err != nil || string(magic) != string(artifactMagic) {
		f.Close()
		return nil, fmt.Errorf("%w: bad container magic in %s", models.ErrCorruptEntry, path)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(f, lenBuf[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: truncated manifest length in %s", models.ErrCorruptEntry, path)
	}
	manifestLen := binary.BigEndian.Uint32(lenBuf[:])

	manifestJSON := make([]byte, manifestLen)
	if _, err := io.ReadFull(f, manifestJSON); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: truncated manifest in %s", models.ErrCorruptEntry, path)
	}

	var manifest ArtifactManifest
	if err := json.Unmarshal(manifestJSON, &manifest); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: unreadable manifest in %s: %v", models.ErrCorruptEntry, path, err)
	}

	payloadOff := int64(len(artifactMagic)) + 4 + int64(manifestLen)
	payloadHash := sha256.New()
	if _, err := io.Copy(payloadHash, f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to hash artifact payload: %w", err)
	}
	if got := hex.EncodeToString(payloadHash.Sum(nil)); got != manifest.PayloadSHA256 {
		f.Close()
		return nil, fmt.Errorf("%w: payload checksum mismatch in %s", models.ErrCorruptEntry, path)
	}

	return &Artifact{f: f, manifest: manifest, payloadOff: payloadOff}, nil
}

// Manifest returns the container's manifest.
func (a *Artifact) Manifest() ArtifactManifest {
	return a.manifest
}

// Section reads the payload for one variable/step.
func (a *Artifact) Section(variableID string, step int) ([]byte, error) {
	for _, s := range a.manifest.Sections {
		if s.VariableID == variableID && s.Step == step {
			buf := make([]byte, s.Length)
			if _, err := a.f.ReadAt(buf, a.payloadOff+s.Offset); err != nil {
				return nil, fmt.Errorf("failed to read section %s/+%dh: %w", variableID, step, err)
			}
			return buf, nil
		}
	}
	return nil, fmt.Errorf("no section for %s/+%dh", variableID, step)
}

// Close releases the underlying file.
func (a *Artifact) Close() error {
	return a.f.Close()
}

// DownloadDir returns where the build pipeline spools raw publisher files.
func DownloadDir(workdir string) string {
	return filepath.Join(workdir, downloadDirName)
}
