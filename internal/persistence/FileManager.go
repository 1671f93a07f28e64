package persistence

import (
	"bytes"
	"fmt"
	json "github.com/goccy/go-json"
	"os"
	"portal/internal/models"
	"portal/internal/persistence/interfaces"
	"portal/internal/providers"
	"portal/internal/treestore"
	"time"
)

const snapshotVersion = 1

// snapshot is the on-disk envelope around the tree root.
type snapshot struct {
	Version int         `json:"version"`
	SavedAt int64       `json:"savedAt"`
	Root    models.Node `json:"root"`
}

type FileManager struct {
	tree       treestore.Snapshotter
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, tree treestore.Snapshotter, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		tree:       tree,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	jsonData, err := json.Marshal(snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UnixMilli(),
		Root:    f.tree.Snapshot(),
	})
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile replaces the tree with the saved snapshot. A missing file is
// not an error. Uncompressed files and bare tree documents written by older
// builds are still accepted.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		f.logger.Warnf(providers.TypeApp, "Snapshot %s is empty, starting with an empty tree", fileName)
		return nil
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		f.logger.Warnf(providers.TypeApp, "Snapshot %s is not compressed, trying plain JSON", fileName)
		decompressed = data
	}

	var snap snapshot
	if err := json.Unmarshal(decompressed, &snap); err == nil && snap.Version > 0 {
		if snap.Version > snapshotVersion {
			return fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, snapshotVersion)
		}
		return f.load(snap.Root)
	}

	f.logger.Warnf(providers.TypeApp, "Snapshot %s has no envelope, loading it as a bare tree", fileName)
	root, err := models.ParseNode(decompressed)
	if err != nil {
		f.logger.Warnf(providers.TypeApp, "Snapshot migration failed")
		return err
	}
	return f.load(root)
}

func (f *FileManager) load(root models.Node) error {
	if root.IsNull() {
		root = models.Undefined
	}
	if root.IsDefined() && root.Kind() != models.KindObject {
		return fmt.Errorf("snapshot root must be an object, got %s", root.Kind())
	}
	f.tree.Load(root)
	return nil
}
