package outer

// strtol replicates C strtol(str, &endptr, 0) as needed by NUMBER:
// optional sign, "0x"/"0X" hex prefix, leading "0" octal prefix,
// otherwise decimal, parsing as many leading characters as form a
// valid number and reporting how many trailing characters were left
// unconverted. Go's strconv.ParseInt has no partial-conversion mode,
// so NUMBER needs its own scanner (§9 Design Notes).
func strtol(str string) (value int64, unconverted int) {
	n := len(str)
	i := 0
	neg := false
	if i < n && (str[i] == '+' || str[i] == '-') {
		neg = str[i] == '-'
		i++
	}
	signEnd := i

	base := 10
	digitsStart := i
	if i+1 < n && str[i] == '0' && (str[i+1] == 'x' || str[i+1] == 'X') {
		base = 16
		digitsStart = i + 2
	} else if i < n && str[i] == '0' {
		base = 8
		digitsStart = i
	}

	digitVal := func(c byte) int {
		switch {
		case c >= '0' && c <= '9':
			return int(c - '0')
		case c >= 'a' && c <= 'z':
			return int(c-'a') + 10
		case c >= 'A' && c <= 'Z':
			return int(c-'A') + 10
		default:
			return -1
		}
	}

	j := digitsStart
	var v int64
	for j < n {
		d := digitVal(str[j])
		if d < 0 || d >= base {
			break
		}
		v = v*int64(base) + int64(d)
		j++
	}

	consumed := j
	if consumed == digitsStart {
		// No digits past a "0x"/"0X" prefix: strtol backs off to
		// consuming just the leading "0" as a valid zero.
		if base == 16 {
			return 0, n - (signEnd + 1)
		}
		if consumed == signEnd {
			// No digits at all: nothing converted.
			return 0, n
		}
	}

	if neg {
		v = -v
	}
	return v, n - consumed
}
