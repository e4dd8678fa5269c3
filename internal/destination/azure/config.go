// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package azure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

var (
	// ErrMissingEnvVariable reports missing mandatory environment variables.
	ErrMissingEnvVariable = errors.New("missing environment variable")
	// ErrInvalidEnvVariable reports malformed environment variable values.
	ErrInvalidEnvVariable = errors.New("invalid environment value")
	// ErrAzureDestination wraps errors emitted by the Azure destinations.
	ErrAzureDestination = errors.New("azure destination")
)

// blobConfig holds the configuration needed to upload snapshots to a storage container.
type blobConfig struct {
	ConnectionString string `env:"EXPORT_BLOB_CONNECTION_STRING"`
	StorageAccount   string `env:"EXPORT_BLOB_ACCOUNT_NAME"`
	ContainerName    string `env:"EXPORT_BLOB_CONTAINER"`
}

// eventHubsConfig holds the configuration needed to send snapshots to an event hub.
type eventHubsConfig struct {
	ConnectionString string `env:"EXPORT_EVENTHUBS_CONNECTION_STRING"`
	Namespace        string `env:"EXPORT_EVENTHUBS_NAMESPACE"`
	EventHubName     string `env:"EXPORT_EVENTHUBS_NAME"`
}

func (c blobConfig) validate() error {
	switch {
	case len(c.ConnectionString) == 0 && len(c.StorageAccount) == 0:
		return fmt.Errorf("%w: %s", ErrInvalidEnvVariable, "one of EXPORT_BLOB_CONNECTION_STRING or EXPORT_BLOB_ACCOUNT_NAME must be present")
	case len(c.ContainerName) == 0:
		return fmt.Errorf("%w: %s", ErrMissingEnvVariable, "EXPORT_BLOB_CONTAINER")
	}

	return nil
}

func (c eventHubsConfig) validate() error {
	switch {
	case len(c.ConnectionString) == 0 && len(c.Namespace) == 0:
		return fmt.Errorf("%w: %s", ErrInvalidEnvVariable, "one of EXPORT_EVENTHUBS_CONNECTION_STRING or EXPORT_EVENTHUBS_NAMESPACE must be present")
	case len(c.Namespace) > 0 && len(c.EventHubName) == 0:
		return fmt.Errorf("%w: %s", ErrMissingEnvVariable, "EXPORT_EVENTHUBS_NAME")
	}

	return nil
}

func (c blobConfig) serviceURL() string {
	if strings.Contains(c.StorageAccount, ".blob.core.windows.net") {
		return c.StorageAccount
	}

	return fmt.Sprintf("https://%s.blob.core.windows.net/", c.StorageAccount)
}

func (c eventHubsConfig) fullyQualifiedNamespace() string {
	if strings.Contains(c.Namespace, ".servicebus.windows.net") {
		return c.Namespace
	}

	return c.Namespace + ".servicebus.windows.net"
}

func (c blobConfig) newClient() (*azblob.Client, error) {
	if c.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(c.ConnectionString, nil)
	}

	credentials, err := defaultCredential()
	if err != nil {
		return nil, err
	}
	return azblob.NewClient(c.serviceURL(), credentials, nil)
}

func (c eventHubsConfig) newProducerClient() (*azeventhubs.ProducerClient, error) {
	if c.ConnectionString != "" {
		return azeventhubs.NewProducerClientFromConnectionString(c.ConnectionString, c.EventHubName, nil)
	}

	credentials, err := defaultCredential()
	if err != nil {
		return nil, err
	}
	return azeventhubs.NewProducerClient(c.fullyQualifiedNamespace(), c.EventHubName, credentials, nil)
}

// defaultCredential resolves the credential from the environment, workload identity or the Azure CLI.
func defaultCredential() (azcore.TokenCredential, error) {
	return azidentity.NewDefaultAzureCredential(nil)
}

func handleError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrAzureDestination, err)
}
