package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// maxPlainDigits - числа длиннее записываются с экспонентой
	maxPlainDigits = 21
	maxExponent    = 1 << 30
)

// Canonicalize приводит JSON к каноническому виду: ключи объектов
// отсортированы, пробелы удалены, числа записаны единообразно
// (1, 1.0 и 1e0 дают 1) без округления.
// Семантически равные документы дают одинаковые байты.
func Canonicalize(raw []byte) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("json document cannot be empty")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	// Проверяем, что после документа нет мусора
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after json document")
	}

	// encoding/json сортирует ключи map при сериализации
	canonical, err := json.Marshal(normalizeNumbers(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode canonical json: %w", err)
	}

	return canonical, nil
}

// Checksum возвращает hex-encoded SHA-256 от канонического JSON.
// Используется для проверки равенства payload без глубокого сравнения.
func Checksum(raw []byte) (string, error) {
	canonical, err := Canonicalize(raw)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		return canonicalNumber(x)
	case map[string]any:
		for k, val := range x {
			x[k] = normalizeNumbers(val)
		}
	case []any:
		for i := range x {
			x[i] = normalizeNumbers(x[i])
		}
	}
	return v
}

// canonicalNumber переписывает число как digits * 10^exp без ведущих
// и хвостовых нулей. Запись с неразборчивой экспонентой не меняется.
func canonicalNumber(n json.Number) json.Number {
	s := string(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	mantissa, expPart, hasExp := strings.Cut(strings.ToLower(s), "e")
	exp := 0
	if hasExp {
		e, err := strconv.Atoi(expPart)
		if err != nil || e > maxExponent || e < -maxExponent {
			return n
		}
		exp = e
	}

	intPart, frac, _ := strings.Cut(mantissa, ".")
	digits := strings.TrimLeft(intPart+frac, "0")
	if digits == "" {
		return "0"
	}
	exp -= len(frac)
	trimmed := strings.TrimRight(digits, "0")
	exp += len(digits) - len(trimmed)
	digits = trimmed

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	switch {
	case exp >= 0 && len(digits)+exp <= maxPlainDigits:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", exp))
	case exp < 0 && -exp < len(digits):
		point := len(digits) + exp
		b.WriteString(digits[:point])
		b.WriteByte('.')
		b.WriteString(digits[point:])
	case exp < 0 && len(digits)-exp <= maxPlainDigits:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -exp-len(digits)))
		b.WriteString(digits)
	default:
		b.WriteString(digits)
		b.WriteByte('e')
		b.WriteString(strconv.Itoa(exp))
	}
	return json.Number(b.String())
}
