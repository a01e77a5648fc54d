package debug

import (
	"encoding/json"

	"arc56/internal/logging"
	"arc56/internal/models"
)

// PrintDeployment logs the deployment in JSON format at debug level
func PrintDeployment(log logging.Logger, deployment *models.Deployment) {
	jsonData, err := json.MarshalIndent(deployment, "", "  ")
	if err != nil {
		log.Errorw("Failed to marshal deployment to JSON", "error", err)
		return
	}

	log.Debugw("Deployment details", "json", string(jsonData))
}

// PrintActivity logs the call activity in JSON format at debug level
func PrintActivity(log logging.Logger, activity *models.CallActivity) {
	jsonData, err := json.MarshalIndent(activity, "", "  ")
	if err != nil {
		log.Errorw("Failed to marshal activity to JSON", "error", err)
		return
	}

	log.Debugw("Call activity details", "json", string(jsonData))
}
