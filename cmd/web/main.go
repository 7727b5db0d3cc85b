// @title           talent2income API
// @version         1.0
// @description     API маркетплейса фриланс-заданий: задания, эскроу-платежи, отзывы и сообщения.
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /api/v1

package main

import "talent2income_backend/internal/app"

func main() {
	app.Run()
}
