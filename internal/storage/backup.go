package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// BackupManager handles database backup and restore operations.
type BackupManager struct {
	dbPath string
}

// NewBackupManager creates a new backup manager for the given database path.
func NewBackupManager(dbPath string) *BackupManager {
	return &BackupManager{dbPath: dbPath}
}

// BackupOptions controls a single backup operation.
type BackupOptions struct {
	// Dir is where backups are written. Defaults to a "backups" directory
	// next to the database.
	Dir string

	// Name is the backup file name without extension. Defaults to a
	// timestamped name.
	Name string

	// Verify runs an integrity check on the backup after creation.
	Verify bool

	// Encryption, when non-nil, encrypts the backup file in place after
	// creation.
	Encryption *EncryptionConfig
}

// Backup creates a backup of the database and returns its path.
// Uses VACUUM INTO, which is atomic and needs no exclusive lock; falls back
// to a plain file copy when the sqlite build does not support it.
func (bm *BackupManager) Backup(opts *BackupOptions) (string, error) {
	if opts == nil {
		opts = &BackupOptions{Verify: true}
	}

	dir := opts.Dir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(bm.dbPath), "backups")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = "backup_" + time.Now().Format("20060102_150405")
	}
	backupPath := filepath.Join(dir, name+".db")

	source, err := sql.Open("sqlite", bm.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open source database: %w", err)
	}
	defer func() { _ = source.Close() }()

	if _, err := source.Exec(fmt.Sprintf("VACUUM INTO %q", backupPath)); err != nil {
		if _, copyErr := bm.backupByCopy(backupPath); copyErr != nil {
			return "", copyErr
		}
	}

	if opts.Verify {
		if err := bm.VerifyBackup(backupPath); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("backup verification failed: %w", err)
		}
	}

	if opts.Encryption != nil {
		encPath := backupPath + ".enc"
		if err := EncryptFile(backupPath, encPath, opts.Encryption); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("failed to encrypt backup: %w", err)
		}
		_ = os.Remove(backupPath)
		return encPath, nil
	}

	return backupPath, nil
}

// backupByCopy copies the database file directly. Fallback when VACUUM INTO
// is unavailable.
func (bm *BackupManager) backupByCopy(backupPath string) (string, error) {
	source, err := os.Open(bm.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open source database file: %w", err)
	}
	defer func() { _ = source.Close() }()

	dest, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer func() { _ = dest.Close() }()

	if _, err := io.Copy(dest, source); err != nil {
		_ = os.Remove(backupPath)
		return "", fmt.Errorf("failed to copy database file: %w", err)
	}

	return backupPath, nil
}

// Restore replaces the current database with a backup.
// The caller must close all connections to the database first.
func (bm *BackupManager) Restore(backupPath string, enc *EncryptionConfig) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	sourcePath := backupPath
	if enc != nil {
		decPath := bm.dbPath + ".restore.dec"
		if err := DecryptFile(backupPath, decPath, enc); err != nil {
			return fmt.Errorf("failed to decrypt backup: %w", err)
		}
		defer func() { _ = os.Remove(decPath) }()
		sourcePath = decPath
	}

	if err := bm.VerifyBackup(sourcePath); err != nil {
		return fmt.Errorf("backup verification failed: %w", err)
	}

	tempPath := bm.dbPath + ".restore.tmp"
	if err := copyFile(sourcePath, tempPath); err != nil {
		return err
	}

	// Keep the old database around until the rename succeeds.
	if _, err := os.Stat(bm.dbPath); err == nil {
		if err := os.Rename(bm.dbPath, bm.dbPath+".pre-restore"); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
	}

	if err := os.Rename(tempPath, bm.dbPath); err != nil {
		return fmt.Errorf("failed to move restored database into place: %w", err)
	}
	_ = os.Remove(bm.dbPath + ".pre-restore")

	return nil
}

// sqliteHeader is the 16-byte magic at the start of every database file.
const sqliteHeader = "SQLite format 3\x00"

// VerifyBackup runs sqlite's integrity check against a backup file. The file
// must already exist and carry the sqlite header; opening through the driver
// alone would silently create an empty database at a bad path.
func (bm *BackupManager) VerifyBackup(backupPath string) error {
	info, err := os.Stat(backupPath)
	if err != nil {
		return fmt.Errorf("backup file not readable: %w", err)
	}
	if info.Size() < int64(len(sqliteHeader)) {
		return fmt.Errorf("backup file too small to be a database: %s", backupPath)
	}

	f, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	header := make([]byte, len(sqliteHeader))
	_, err = io.ReadFull(f, header)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("failed to read backup header: %w", err)
	}
	if string(header) != sqliteHeader {
		return fmt.Errorf("backup file is not a sqlite database: %s", backupPath)
	}

	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed to run: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check reported: %s", result)
	}

	return nil
}

// Checksum returns the hex-encoded SHA-256 of a backup file.
func (bm *BackupManager) Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	return nil
}
