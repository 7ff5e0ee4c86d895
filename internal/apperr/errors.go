package apperr

import (
	"errors"
	"fmt"
)

// Сентинел-ошибки конвейера выдачи. Любая ошибка ядра оборачивает
// ровно один из этих видов; до завершения процесса не доводит ни одна.
var (
	// ErrPermissionDenied — у пользователя нет нужного права или группового бита.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound — запись каталога не найдена, либо файл отсутствует в хранилище.
	// Наружу оба случая выглядят одинаково, различие — только в логах.
	ErrNotFound = errors.New("not found")

	// ErrUnsupported — запрошен неизвестный алгоритм сжатия или хеширования.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrEncryption — сбой внешнего шифрования, ключа получателя или
	// структурной проверки шифртекста.
	ErrEncryption = errors.New("encryption failure")

	// ErrIO — ошибка создания/записи/удаления временного файла.
	ErrIO = errors.New("io failure")

	// ErrInvalidArgument — некорректная маска или хеш.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Wrap оборачивает причину в указанный вид с пояснением.
func Wrap(kind error, msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", kind, msg)
	}
	return fmt.Errorf("%w: %s: %v", kind, msg, cause)
}

// New возвращает ошибку указанного вида с пояснением.
func New(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}
