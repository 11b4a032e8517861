package init

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	prof "github.com/slate-ml/slate/cmd/slate/config/profiles"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"
)

const ARG_PROFILE_FILE = "SLATE_PROFILE_FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Initialize this directory as a slate project.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_PROFILE_FILE, Required: true,
				Help: "filepath to a slate profile file, which you received from your admin.",
			},
		},
		common.NewTaskWithCommonFlag(Task),
		flarc.WithDescription(`
Register a slate profile into your profile store.

A slate profile is a file which points at a Slate service endpoint and
holds the credential to use it. "{{ .Command }}" registers the given
profile into your profile store and marks this directory as using it.

The name of the profile is given by "--profile" ( default: current filepath ).
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	commonFlag common.CommonFlags,
	cl flarc.Commandline[struct{}],
	params []any,
) error {
	profFile := cl.Args()[ARG_PROFILE_FILE][0]

	profStore, err := prof.LoadProfileStore(commonFlag.ProfileStore)
	if errors.Is(err, prof.ErrProfileStoreNotFound) {
		// ok.
		profStore = prof.ProfileStore{}
	} else if err != nil {
		return fmt.Errorf(
			"%w: failed to load profile store (%s)", err, commonFlag.ProfileStore,
		)
	}

	profName := commonFlag.Profile
	newProf := new(prof.SlateProfile)
	{
		content, err := os.ReadFile(profFile)
		if err != nil {
			return fmt.Errorf("%w: failed to read profile file (%s)", err, profFile)
		}

		if err := yaml.Unmarshal(content, newProf); err != nil {
			return fmt.Errorf("%w: failed to parse profile file (%s)", err, profFile)
		}
	}
	if err := newProf.Verify(); err != nil {
		return fmt.Errorf("%w: %s", err, profFile)
	}

	profStore[profName] = newProf
	if err := profStore.Save(commonFlag.ProfileStore); err != nil {
		return fmt.Errorf(
			"%w: failed to save profile store (%s)", err, commonFlag.ProfileStore,
		)
	}
	logger.Printf(
		"profile %s is saved to %s", profName, commonFlag.ProfileStore,
	)

	{
		f, err := os.OpenFile(".slateprofile", os.O_RDWR|os.O_CREATE|os.O_TRUNC, os.FileMode(0600))
		if err != nil {
			return fmt.Errorf("%w: failed to open .slateprofile", err)
		}
		defer f.Close()
		f.Write([]byte(profName))
	}

	return nil
}
