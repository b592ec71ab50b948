package route

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"confreg/src-server/model"
	"confreg/src-server/service"
	"confreg/src-server/utils"
)

// API registers the JSON endpoints: live membership-discount checks used
// by the form, and the participant list for administrative review.
func API(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("POST /api/v1/verify-acm", WithRequestID(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AcmMembershipNumber string `json:"acmMembershipNumber"`
			Email               string `json:"email"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Request data is not valid"))
			return
		}
		canApply, err := service.CanApplyACMMembershipDiscount(r.Context(), as, body.AcmMembershipNumber, body.Email)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't check the membership number"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(canApply)
	}))

	muxer.HandleFunc("POST /api/v1/verify-ieee", WithRequestID(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IeeeMembershipNumber string `json:"ieeeMembershipNumber"`
			Email                string `json:"email"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Request data is not valid"))
			return
		}
		canApply, err := service.CanApplyIEEEMembership(r.Context(), as, body.IeeeMembershipNumber, body.Email)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't check the membership number"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(canApply)
	}))

	muxer.HandleFunc("GET /api/v1/participants", WithRequestID(func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		participants, err := model.AllParticipants(r.Context(), as.BunDB)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't list participants"))
			return
		}
		select {
		case as.MetricChans.DatabaseRead <- float64(time.Since(startTimer).Microseconds()):
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(participants)
	}))
}
