package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrPasswordTooShort        = errors.New("password is too short")
	ErrTourTitleRequired       = errors.New("tour title is required")
	ErrTourInvalidDateRange    = errors.New("tour end date must be after start date")
	ErrTourInvalidStatus       = errors.New("invalid tour status provided")
	ErrTourStatusTransition    = errors.New("invalid tour status transition")
	ErrParticipantNameRequired = errors.New("participant name is required")
	ErrRoomLabelRequired       = errors.New("room label is required")
	ErrRoomKindInvalid         = errors.New("invalid room kind provided")
	ErrRoomCapacityInvalid     = errors.New("room capacity must be zero or positive")
	ErrTeeTimeDateRequired     = errors.New("tee time date is required")
	ErrTeeTimeCourseRequired   = errors.New("tee time course is required")
	ErrTeeTimeInvalidClock     = errors.New("tee time must be in HH:MM 24-hour format")
	ErrTeeTimeInvalidOrdinal   = errors.New("team ordinal must be positive")
	ErrTeeTimeInvalidInterval  = errors.New("tee time interval must be positive")
	ErrTeeTimeInvalidCount     = errors.New("tee time slot count must be positive")
	ErrTeeTimePastMidnight     = errors.New("generated tee times would run past midnight")
	ErrTeeTimePlayerRequired   = errors.New("player name is required")

	// Единственная доменная ошибка хранилища расселения
	ErrRoomCapacityFull = errors.New("room is already at full capacity")

	// Ошибки конфликтов
	ErrUserEmailConflict   = errors.New("email address is already in use")
	ErrTeamOrdinalConflict = errors.New("team ordinal is already taken for this date and course")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound        = errors.New("user not found")
	ErrTourNotFound        = errors.New("tour not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrTeeTimeSlotNotFound = errors.New("tee time slot not found")
	ErrPlayerNotInSlot     = errors.New("player is not in the source slot")
)
