// Package provider maps the selected cloud provider to the concrete
// resource variants and parameter bindings used during rendering.
package provider

import (
	"errors"
	"fmt"
)

// Provider identifies the target platform a deployment renders against.
type Provider string

// Supported providers.
const (
	AWS          Provider = "aws"
	GCP          Provider = "gcp"
	Azure        Provider = "azure"
	DigitalOcean Provider = "do"
	Local        Provider = "local"
	Existing     Provider = "existing"
)

// ErrUnknownProvider indicates a provider outside the supported set.
var ErrUnknownProvider = errors.New("unknown provider")

// All lists every supported provider in a stable order.
func All() []Provider {
	return []Provider{AWS, GCP, Azure, DigitalOcean, Local, Existing}
}

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	for _, known := range All() {
		if p == known {
			return true
		}
	}
	return false
}

// Cloud reports whether p is a managed cloud provider (as opposed to a
// local or pre-existing cluster).
func (p Provider) Cloud() bool {
	switch p {
	case AWS, GCP, Azure, DigitalOcean:
		return true
	default:
		return false
	}
}

// SharedFilesystem identifies the backing variant for the shared filesystem.
type SharedFilesystem string

// Shared filesystem variants.
const (
	// NFSServer is an in-cluster NFS server deployment.
	NFSServer SharedFilesystem = "nfs-server"
	// EFS is the AWS Elastic File System managed service.
	EFS SharedFilesystem = "efs"
	// Filestore is the Google Cloud Filestore managed service.
	Filestore SharedFilesystem = "filestore"
	// AzureFiles is the Azure Files managed service.
	AzureFiles SharedFilesystem = "azure-files"
)

// Bindings holds the provider-specific parameter set consumed by templates.
// All values are static mapping results; resolving bindings performs no
// network or credential calls.
type Bindings struct {
	// Provider is the provider these bindings were resolved for.
	Provider Provider

	// NodeGroupLabelKey is the node label key that selects a node group
	// on this provider's managed Kubernetes offering.
	NodeGroupLabelKey string

	// SharedFilesystem is the backing variant for the shared filesystem.
	SharedFilesystem SharedFilesystem

	// Autoscaling is true when the provider offers managed node
	// autoscaling and the autoscaler module should be rendered.
	Autoscaling bool

	// StateBackend names the Terraform state backend variant.
	StateBackend string

	// CredentialEnvVars lists the environment variables the external
	// executor needs for this provider. The engine never reads their
	// values; they are surfaced by doctor checks and documentation.
	CredentialEnvVars []string
}

// bindingsTable is the closed set of provider variants. Adding a provider
// requires a row here; Resolve never falls back to a default.
var bindingsTable = map[Provider]Bindings{
	AWS: {
		Provider:          AWS,
		NodeGroupLabelKey: "eks.amazonaws.com/nodegroup",
		SharedFilesystem:  EFS,
		Autoscaling:       true,
		StateBackend:      "s3",
		CredentialEnvVars: []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_DEFAULT_REGION"},
	},
	GCP: {
		Provider:          GCP,
		NodeGroupLabelKey: "cloud.google.com/gke-nodepool",
		SharedFilesystem:  Filestore,
		Autoscaling:       true,
		StateBackend:      "gcs",
		CredentialEnvVars: []string{"GOOGLE_CREDENTIALS", "PROJECT_ID"},
	},
	Azure: {
		Provider:          Azure,
		NodeGroupLabelKey: "kubernetes.azure.com/agentpool",
		SharedFilesystem:  AzureFiles,
		Autoscaling:       true,
		StateBackend:      "azurerm",
		CredentialEnvVars: []string{"ARM_SUBSCRIPTION_ID", "ARM_TENANT_ID", "ARM_CLIENT_ID", "ARM_CLIENT_SECRET"},
	},
	DigitalOcean: {
		Provider:          DigitalOcean,
		NodeGroupLabelKey: "doks.digitalocean.com/node-pool",
		SharedFilesystem:  NFSServer,
		Autoscaling:       true,
		StateBackend:      "spaces",
		CredentialEnvVars: []string{"DIGITALOCEAN_TOKEN", "SPACES_ACCESS_KEY_ID", "SPACES_SECRET_ACCESS_KEY"},
	},
	Local: {
		Provider:          Local,
		NodeGroupLabelKey: "kubernetes.io/os",
		SharedFilesystem:  NFSServer,
		Autoscaling:       false,
		StateBackend:      "local",
		CredentialEnvVars: nil,
	},
	Existing: {
		Provider:          Existing,
		NodeGroupLabelKey: "kubernetes.io/os",
		SharedFilesystem:  NFSServer,
		Autoscaling:       false,
		StateBackend:      "kubernetes",
		CredentialEnvVars: nil,
	},
}

// Resolve returns the variant bindings for p.
// An unrecognized provider is a fatal configuration error, never a default.
func Resolve(p Provider) (Bindings, error) {
	b, ok := bindingsTable[p]
	if !ok {
		return Bindings{}, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownProvider, p, All())
	}
	return b, nil
}
