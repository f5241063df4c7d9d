package components

// String returns the display name for a Kind.
func (k Kind) String() string {
	names := KindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// KindNames returns the names for all particle kinds.
// The order matches the Kind constants.
func KindNames() []string {
	return []string{"emitter", "seeker"}
}

// ParseKind maps a name from KindNames back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for i, n := range KindNames() {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// String returns the display name for a Drive.
func (d Drive) String() string {
	names := DriveNames()
	if int(d) < len(names) {
		return names[d]
	}
	return "unknown"
}

// DriveNames returns the names for all drives.
// The order matches the Drive constants.
func DriveNames() []string {
	return []string{"none", "emitter", "cohesion", "wander"}
}
