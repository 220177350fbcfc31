package overridefile

//oblicheck:entrypoint
func trigger() { // want `trigger directly contains 1 unjustified obligated call`
	risky()
}

//oblicheck:entrypoint
func acknowledged() {
	// Safety: the global table lock is held here
	risky()
}

func risky() {}
