package capability

import (
	"golang.org/x/sys/unix"

	serrors "seccage/errors"
	"seccage/logging"
	"seccage/profile"
)

// Apply performs the capability transition described by policy against
// the calling thread, following a fixed five-step procedure: resolve the
// keep list against known names, snapshot the current permitted set,
// mirror it into inheritable, optionally clear the ambient set, then
// raise ambient for each resolved keep name that is in the permitted set
// (a name outside it is warned and skipped). A nil policy is a no-op —
// the process keeps whatever capabilities it already has.
func Apply(policy *profile.CapabilityPolicy) error {
	if policy == nil {
		return nil
	}

	kept := make([]int, 0, len(policy.Keep))
	for _, name := range policy.Keep {
		num, ok := NameToNumber(name)
		if !ok {
			logging.Warn("unknown capability name, skipping", "capability", name)
			continue
		}
		kept = append(kept, num)
	}

	header := unix.CapUserHeader{Version: unix.LINUX_CAPABILITY_VERSION_3, Pid: 0}
	var data [2]unix.CapUserData
	if err := unix.Capget(&header, &data[0]); err != nil {
		return serrors.WrapWithDetail(err, serrors.ErrCapabilitySetupFailed, "apply capabilities", "capget")
	}

	data[0].Inheritable = data[0].Permitted
	data[1].Inheritable = data[1].Permitted

	if err := unix.Capset(&header, &data[0]); err != nil {
		return serrors.WrapWithDetail(err, serrors.ErrCapabilitySetupFailed, "apply capabilities", "capset inheritable")
	}

	if policy.DropAll {
		if err := unix.Prctl(unix.PR_CAP_AMBIENT, unix.PR_CAP_AMBIENT_CLEAR_ALL, 0, 0, 0); err != nil {
			return serrors.WrapWithDetail(err, serrors.ErrCapabilitySetupFailed, "apply capabilities", "clear ambient")
		}
	}

	permitted := vectorBit(data[0].Permitted, data[1].Permitted)
	for _, num := range kept {
		if !permitted(num) {
			logging.Warn("capability not permitted, cannot raise to ambient", "capability", NumberToName(num))
			continue
		}
		if err := unix.Prctl(unix.PR_CAP_AMBIENT, unix.PR_CAP_AMBIENT_RAISE, uintptr(num), 0, 0); err != nil {
			return serrors.WrapWithDetail(err, serrors.ErrCapabilitySetupFailed, "apply capabilities", "raise ambient "+NumberToName(num))
		}
	}

	return nil
}

// vectorBit returns a predicate testing whether capability number num is
// set in the two-word bitmask split lo/hi represent.
func vectorBit(lo, hi uint32) func(num int) bool {
	return func(num int) bool {
		if num < 32 {
			return lo&(1<<uint(num)) != 0
		}
		if num <= 63 {
			return hi&(1<<uint(num-32)) != 0
		}
		return false
	}
}

// Max returns the highest capability number the running kernel supports.
func Max() int {
	return lastCap()
}
