package certs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/trsv-dev/gated-static-server/internal/errs"
	"github.com/trsv-dev/gated-static-server/internal/logger"
)

// Options Параметры самоподписанного сертификата для разработки.
type Options struct {
	Subject     pkix.Name
	DNSNames    []string
	IPAddresses []net.IP
	Validity    time.Duration
	KeyBits     int
}

// DefaultOptions Сертификат для localhost на год, RSA 4096.
func DefaultOptions() Options {
	return Options{
		Subject: pkix.Name{
			Country:      []string{"SV"},
			Province:     []string{"San Salvador"},
			Locality:     []string{"San Salvador"},
			Organization: []string{"Development"},
			CommonName:   "localhost",
		},
		DNSNames:    []string{"localhost"},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		Validity:    365 * 24 * time.Hour,
		KeyBits:     4096,
	}
}

// EnsureSelfSigned Создает самоподписанный сертификат и ключ, если хотя бы одного из файлов нет,
// и загружает пару. Существующие файлы не перезаписываются.
func EnsureSelfSigned(certFile, keyFile string, opts Options) (tls.Certificate, error) {
	certExists, err := fileExists(certFile)
	if err != nil {
		return tls.Certificate{}, errs.NewErrCertBootstrap(certFile, keyFile, err)
	}

	keyExists, err := fileExists(keyFile)
	if err != nil {
		return tls.Certificate{}, errs.NewErrCertBootstrap(certFile, keyFile, err)
	}

	if !certExists || !keyExists {
		logger.Log.Info("Генерация самоподписанного сертификата",
			logger.String("cert", certFile),
			logger.String("key", keyFile),
		)

		if err = Generate(certFile, keyFile, opts); err != nil {
			return tls.Certificate{}, errs.NewErrCertBootstrap(certFile, keyFile, err)
		}

		logger.Log.Info("Сертификат создан")
	}

	return Load(certFile, keyFile)
}

// Load Загружает пару сертификат/ключ.
func Load(certFile, keyFile string) (tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return tls.Certificate{}, errs.NewErrCertBootstrap(certFile, keyFile, err)
	}

	return cert, nil
}

// Generate Генерирует RSA-ключ и самоподписанный сертификат и записывает их в PEM-файлы.
func Generate(certFile, keyFile string, opts Options) error {
	if opts.KeyBits == 0 {
		opts.KeyBits = DefaultOptions().KeyBits
	}
	if opts.Validity <= 0 {
		opts.Validity = DefaultOptions().Validity
	}

	key, err := rsa.GenerateKey(rand.Reader, opts.KeyBits)
	if err != nil {
		return fmt.Errorf("не удалось сгенерировать ключ: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("не удалось сгенерировать серийный номер: %w", err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               opts.Subject,
		NotBefore:             now.Add(-5 * time.Minute),
		NotAfter:              now.Add(opts.Validity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              opts.DNSNames,
		IPAddresses:           opts.IPAddresses,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("не удалось создать сертификат: %w", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать ключ: %w", err)
	}

	if err = writePEM(keyFile, "PRIVATE KEY", keyDER, 0o600); err != nil {
		return err
	}

	return writePEM(certFile, "CERTIFICATE", der, 0o644)
}

func writePEM(path, blockType string, der []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("не удалось создать каталог для %s: %w", path, err)
	}

	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("не удалось записать %s: %w", path, err)
	}

	return nil
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s является каталогом", path)
	}

	return true, nil
}
