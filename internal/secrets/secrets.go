// Package secrets decrypts SOPS-encrypted value files for injection into the
// configuration overlay. Decryption shells out to the sops binary so the
// operator's existing key setup (age, PGP, KMS) applies unchanged.
package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// Decryptor provides SOPS decryption operations.
type Decryptor struct{}

// NewDecryptor creates a new Decryptor instance.
func NewDecryptor() *Decryptor {
	return &Decryptor{}
}

// Decrypt decrypts a SOPS-encrypted YAML file and returns JSON plaintext.
func (d *Decryptor) Decrypt(ctx context.Context, file string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "sops", "--input-type", "yaml", "--output-type", "json", "-d", file)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("sops decrypt failed for %s: %w: %s", file, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// DecryptToMap decrypts a SOPS-encrypted file into a nested map, the shape
// the configuration loader accepts as an overlay.
func (d *Decryptor) DecryptToMap(ctx context.Context, file string) (map[string]any, error) {
	data, err := d.Decrypt(ctx, file)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted JSON from %s: %w", file, err)
	}
	return result, nil
}

// DecryptMultiple decrypts several files and merges them into one overlay.
// Later files override earlier ones for duplicate keys.
func (d *Decryptor) DecryptMultiple(ctx context.Context, files []string) (map[string]any, error) {
	merged := make(map[string]any)
	for _, file := range files {
		data, err := d.DecryptToMap(ctx, file)
		if err != nil {
			return nil, err
		}
		mergeMap(merged, data)
	}
	return merged, nil
}

// mergeMap recursively merges src into dst.
func mergeMap(dst, src map[string]any) {
	for key, srcVal := range src {
		if dstVal, exists := dst[key]; exists {
			if srcMap, srcOk := srcVal.(map[string]any); srcOk {
				if dstMap, dstOk := dstVal.(map[string]any); dstOk {
					mergeMap(dstMap, srcMap)
					continue
				}
			}
		}
		dst[key] = srcVal
	}
}
