// Package sanitizer normalizes customer and catalog input before validation and storage.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Input that cannot be normalized is returned trimmed rather than
// dropped, so the validator can reject it with a field-level message.
//
// Normalization includes:
//   - Phone numbers: E.164 format (+[country][number]), defaulting to North American numbering
//   - Emails: trimmed and lowercased
//   - Free text: collapse whitespace, trim leading/trailing spaces
//   - Pricing details: exactly three entries, truncated or padded with empty strings
package sanitizer
