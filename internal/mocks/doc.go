// Package mocks provides shared test doubles for the store, auth, and events interfaces.
//
// Two styles are used. Store mocks embed testify's mock.Mock and are driven with
// On/Return expectations. Auth mocks use function fields with static defaults:
//
//	jwtService := &mocks.MockJWTService{
//	    GenerateTokenFn: func(ctx context.Context, userID int64) (string, error) {
//	        return "access-token", nil
//	    },
//	}
package mocks
