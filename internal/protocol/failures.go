package protocol

// FailureType classifies why an action did not commit. Precondition failures
// consume no time; GATHER_FAILURE and COMBAT_FAILURE consume the action's full
// planned time, and SESSION_ENDED inside Explore/Survey consumes the ticks
// already spent on failed attempts.
type FailureType string

const (
	FailWrongLocation         FailureType = "WRONG_LOCATION"
	FailLocationNotDiscovered FailureType = "LOCATION_NOT_DISCOVERED"
	FailNodeNotFound          FailureType = "NODE_NOT_FOUND"
	FailEnemyNotFound         FailureType = "ENEMY_NOT_FOUND"
	FailRecipeNotFound        FailureType = "RECIPE_NOT_FOUND"
	FailContractNotFound      FailureType = "CONTRACT_NOT_FOUND"
	FailAreaNotKnown          FailureType = "AREA_NOT_KNOWN"
	FailNoConnection          FailureType = "NO_CONNECTION"
	FailMissingItems          FailureType = "MISSING_ITEMS"
	FailMissingWeapon         FailureType = "MISSING_WEAPON"
	FailAlreadyHasContract    FailureType = "ALREADY_HAS_CONTRACT"
	FailAlreadyEnrolled       FailureType = "ALREADY_ENROLLED"
	FailNotEnrolled           FailureType = "NOT_ENROLLED"
	FailSkillTooLow           FailureType = "SKILL_TOO_LOW"
	FailInventoryFull         FailureType = "INVENTORY_FULL"
	FailNodeDepleted          FailureType = "NODE_DEPLETED"
	FailAlreadyAppraised      FailureType = "ALREADY_APPRAISED"
	FailNothingToExplore      FailureType = "NOTHING_TO_EXPLORE"
	FailNothingToSurvey       FailureType = "NOTHING_TO_SURVEY"
	FailSessionEnded          FailureType = "SESSION_ENDED"
	FailGather                FailureType = "GATHER_FAILURE"
	FailCombat                FailureType = "COMBAT_FAILURE"
)

var knownFailures = map[FailureType]struct{}{
	FailWrongLocation:         {},
	FailLocationNotDiscovered: {},
	FailNodeNotFound:          {},
	FailEnemyNotFound:         {},
	FailRecipeNotFound:        {},
	FailContractNotFound:      {},
	FailAreaNotKnown:          {},
	FailNoConnection:          {},
	FailMissingItems:          {},
	FailMissingWeapon:         {},
	FailAlreadyHasContract:    {},
	FailAlreadyEnrolled:       {},
	FailNotEnrolled:           {},
	FailSkillTooLow:           {},
	FailInventoryFull:         {},
	FailNodeDepleted:          {},
	FailAlreadyAppraised:      {},
	FailNothingToExplore:      {},
	FailNothingToSurvey:       {},
	FailSessionEnded:          {},
	FailGather:                {},
	FailCombat:                {},
}

func IsKnownFailure(f FailureType) bool {
	if f == "" {
		return true
	}
	_, ok := knownFailures[f]
	return ok
}

// TimedFailure reports whether a failure of this type still consumes the
// action's planned time. Everything else is a free precondition failure.
func TimedFailure(f FailureType) bool {
	switch f {
	case FailGather, FailCombat:
		return true
	}
	return false
}
