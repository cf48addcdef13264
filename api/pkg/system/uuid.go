package system

import (
	"github.com/google/uuid"
)

const RequestPrefix = "req_"

func GenerateUUID() string {
	return uuid.New().String()
}

func GenerateRequestID() string {
	return RequestPrefix + GenerateUUID()
}
