package errs

import "fmt"

// ErrCertBootstrap Кастомная ошибка, сообщающая о невозможности подготовить TLS-сертификат
// (сгенерировать или загрузить пару сертификат/ключ).
type ErrCertBootstrap struct {
	CertFile string
	KeyFile  string
	Err      error
}

func (cb *ErrCertBootstrap) Error() string {
	return fmt.Sprintf("Не удалось подготовить TLS-сертификат (cert: `%s`, key: `%s`). Ошибка: %v", cb.CertFile, cb.KeyFile, cb.Err)
}

func (cb *ErrCertBootstrap) Unwrap() error {
	return cb.Err
}

func NewErrCertBootstrap(certFile, keyFile string, err error) *ErrCertBootstrap {
	return &ErrCertBootstrap{
		CertFile: certFile,
		KeyFile:  keyFile,
		Err:      err,
	}
}

// ErrInvalidRules Кастомная ошибка, сообщающая о некорректной таблице правил маршрутизации.
type ErrInvalidRules struct {
	Field string
	Value string
	Err   error
}

func (ir *ErrInvalidRules) Error() string {
	return fmt.Sprintf("Некорректное правило `%s` (значение `%s`). Ошибка: %v", ir.Field, ir.Value, ir.Err)
}

func (ir *ErrInvalidRules) Unwrap() error {
	return ir.Err
}

func NewErrInvalidRules(field, value string, err error) *ErrInvalidRules {
	if err == nil {
		err = fmt.Errorf("правило не прошло проверку")
	}

	return &ErrInvalidRules{
		Field: field,
		Value: value,
		Err:   err,
	}
}
