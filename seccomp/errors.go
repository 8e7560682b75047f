package seccomp

import (
	"fmt"

	serrors "seccage/errors"
	"seccage/syscalltable"
)

func errUnsupportedArch(arch syscalltable.Arch) error {
	return serrors.WrapWithDetail(nil, serrors.ErrProfileInvalid, "compile filter",
		fmt.Sprintf("unsupported architecture %q", arch))
}

func errProgramTooLarge(total int) error {
	return serrors.WrapWithDetail(nil, serrors.ErrProfileInvalid, "compile filter",
		fmt.Sprintf("compiled program would need %d instructions, exceeding the 8-bit forward branch bound", total))
}

func errMissingErrno() error {
	return serrors.WrapWithDetail(nil, serrors.ErrProfileInvalid, "compile filter",
		"default_action is errno but errno_value is absent")
}

func errUnknownAction(action string) error {
	return serrors.WrapWithDetail(nil, serrors.ErrProfileInvalid, "compile filter",
		fmt.Sprintf("unknown default_action %q", action))
}
