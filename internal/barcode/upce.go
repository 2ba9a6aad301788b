package barcode

import "fmt"

// UPC-E parity patterns indexed by number system and check digit.
// A set bit selects the G (even) pattern for that position.
var upceParities = [2][10]int{
	{0x38, 0x34, 0x32, 0x31, 0x2C, 0x26, 0x23, 0x2A, 0x29, 0x25},
	{0x07, 0x0B, 0x0D, 0x0E, 0x13, 0x19, 0x1C, 0x15, 0x16, 0x1A},
}

var (
	upcLPatterns = [10]string{
		"0001101", "0011001", "0010011", "0111101", "0100011",
		"0110001", "0101111", "0111011", "0110111", "0001011",
	}
	upcGPatterns = [10]string{
		"0100111", "0110011", "0011011", "0100001", "0011101",
		"0111001", "0000101", "0010001", "0001001", "0010111",
	}
)

const (
	upceStart = "101"
	upceEnd   = "010101"
)

// upceModules encodes a zero-suppressed UPC-E code. The payload is the
// number system digit (0 or 1) followed by six digits, optionally with the
// check digit appended.
func upceModules(payload string) ([]bool, error) {
	if err := requireDigits(payload); err != nil {
		return nil, err
	}
	if len(payload) != 7 && len(payload) != 8 {
		return nil, fmt.Errorf("need 7 or 8 digits, got %d", len(payload))
	}

	ns := int(payload[0] - '0')
	if ns > 1 {
		return nil, fmt.Errorf("number system must be 0 or 1, got %d", ns)
	}

	check := upcCheckDigit(expandUPCE(payload[:7]))
	if len(payload) == 8 {
		if int(payload[7]-'0') != check {
			return nil, fmt.Errorf("checksum mismatch")
		}
	}

	parities := upceParities[ns][check]
	pattern := upceStart
	for i := 1; i <= 6; i++ {
		d := payload[i] - '0'
		if (parities>>(6-i))&1 == 1 {
			pattern += upcGPatterns[d]
		} else {
			pattern += upcLPatterns[d]
		}
	}
	pattern += upceEnd

	modules := make([]bool, len(pattern))
	for i := range pattern {
		modules[i] = pattern[i] == '1'
	}
	return modules, nil
}

// expandUPCE returns the 11 UPC-A data digits a 7 digit UPC-E body stands for.
func expandUPCE(upce string) string {
	ns, d := upce[:1], upce[1:7]
	switch d[5] {
	case '0', '1', '2':
		return ns + d[0:2] + d[5:6] + "0000" + d[2:5]
	case '3':
		return ns + d[0:3] + "00000" + d[3:5]
	case '4':
		return ns + d[0:4] + "00000" + d[4:5]
	default:
		return ns + d[0:5] + "0000" + d[5:6]
	}
}

// upcCheckDigit computes the modulo-10 check digit for UPC-A data digits.
func upcCheckDigit(digits string) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		v := int(digits[i] - '0')
		if i%2 == 0 {
			v *= 3
		}
		sum += v
	}
	return (10 - sum%10) % 10
}
